package cosmos

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/Sternrassler/docdb-client/pkg/session"
)

// ContentTypeQueryJSON is the content type of query bodies.
const ContentTypeQueryJSON = "application/query+json"

// Query is a SQL query with named parameters.
type Query struct {
	Query      string           `json:"query"`
	Parameters []QueryParameter `json:"parameters,omitempty"`
}

// QueryParameter binds a value to a named parameter such as @id.
type QueryParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (cc *CollectionClient) scope() session.Key {
	return session.Key{
		Account:    cc.database.client.account,
		Database:   cc.database.name,
		Collection: cc.name,
	}
}

func (cc *CollectionClient) documentsRequest(opts ListOptions) listRequest {
	c := cc.database.client
	return c.listRequest(ResourceDocuments, cc.scope(), opts, "dbs", cc.database.name, "colls", cc.name, "docs")
}

// ListDocuments lists the documents of the collection, decoding each into T.
func ListDocuments[T any](cc *CollectionClient, opts ListOptions) *Pager[T] {
	req := cc.documentsRequest(opts)
	return newListPager[T](cc.database.client, req, itemsDocuments, opts.continuation())
}

// QueryDocuments runs query against the collection, decoding each result into
// T. The query is encoded once; every page resends the same body.
func QueryDocuments[T any](cc *CollectionClient, query Query, opts QueryOptions) (*Pager[T], error) {
	if query.Query == "" {
		return nil, &RequestConstructionError{Err: fmt.Errorf("query text is required")}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, &RequestConstructionError{Err: fmt.Errorf("encode query: %w", err)}
	}

	h := http.Header{}
	h.Set("Content-Type", ContentTypeQueryJSON)
	h.Set(headers.IsQuery, "True")
	if opts.EnableCrossPartition {
		h.Set(headers.EnableCrossPartition, "True")
	}
	if opts.PartitionKey != nil {
		pk, err := json.Marshal([]any{opts.PartitionKey})
		if err != nil {
			return nil, &RequestConstructionError{Header: headers.PartitionKey, Err: err}
		}
		h.Set(headers.PartitionKey, string(pk))
	}

	req := cc.documentsRequest(opts.ListOptions)
	req.query = body
	req.header = h

	return newListPager[T](cc.database.client, req, itemsDocuments, opts.continuation()), nil
}
