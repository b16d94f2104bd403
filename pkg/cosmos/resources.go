package cosmos

import "encoding/json"

// Database is a database resource.
type Database struct {
	ID          string `json:"id"`
	ResourceID  string `json:"_rid,omitempty"`
	Timestamp   int64  `json:"_ts,omitempty"`
	Self        string `json:"_self,omitempty"`
	ETag        string `json:"_etag,omitempty"`
	Collections string `json:"_colls,omitempty"`
	Users       string `json:"_users,omitempty"`
}

// PartitionKeyDefinition describes how a collection is partitioned.
type PartitionKeyDefinition struct {
	Paths   []string `json:"paths"`
	Kind    string   `json:"kind,omitempty"`
	Version int      `json:"version,omitempty"`
}

// Collection is a document collection resource.
type Collection struct {
	ID             string                  `json:"id"`
	ResourceID     string                  `json:"_rid,omitempty"`
	Timestamp      int64                   `json:"_ts,omitempty"`
	Self           string                  `json:"_self,omitempty"`
	ETag           string                  `json:"_etag,omitempty"`
	Documents      string                  `json:"_docs,omitempty"`
	PartitionKey   *PartitionKeyDefinition `json:"partitionKey,omitempty"`
	IndexingPolicy json.RawMessage         `json:"indexingPolicy,omitempty"`
}

// User is a database user resource.
type User struct {
	ID          string `json:"id"`
	ResourceID  string `json:"_rid,omitempty"`
	Timestamp   int64  `json:"_ts,omitempty"`
	Self        string `json:"_self,omitempty"`
	ETag        string `json:"_etag,omitempty"`
	Permissions string `json:"_permissions,omitempty"`
}
