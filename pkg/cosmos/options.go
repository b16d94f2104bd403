package cosmos

import "github.com/Sternrassler/docdb-client/pkg/headers"

// ListOptions configures one listing operation. The options are copied when
// the pager is created; changing them afterwards has no effect.
type ListOptions struct {
	// ConsistencyLevel overrides the account consistency. Empty sends no
	// override.
	ConsistencyLevel ConsistencyLevel

	// MaxItemCount is the page size hint. Values <= 0 let the server decide.
	MaxItemCount int

	// Continuation resumes a listing at a token returned by an earlier page.
	// Nil or empty starts at the first page.
	Continuation *string
}

// QueryOptions configures a document query.
type QueryOptions struct {
	ListOptions

	// EnableCrossPartition allows the query to fan out across partitions.
	EnableCrossPartition bool

	// PartitionKey scopes the query to one logical partition when non-nil.
	PartitionKey any
}

func (o ListOptions) maxItemCount() int {
	if o.MaxItemCount <= 0 {
		return headers.MaxItemCountDefault
	}
	return o.MaxItemCount
}

func (o ListOptions) continuation() *string {
	if o.Continuation == nil || *o.Continuation == "" {
		return nil
	}
	token := *o.Continuation
	return &token
}
