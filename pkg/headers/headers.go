// Package headers defines the document database wire headers and the
// functions that extract typed metadata from response headers.
//
// Every mandatory response header has its own extraction function so that a
// failure always names the header that was missing or malformed.
package headers

// Request headers.
const (
	// ConsistencyLevel overrides the account read consistency for one request.
	ConsistencyLevel = "x-ms-consistency-level"

	// MaxItemCount is the page size hint. -1 lets the server decide.
	MaxItemCount = "x-ms-max-item-count"

	// Continuation carries the server cursor in both directions.
	Continuation = "x-ms-continuation"

	// SessionToken carries the session read position in both directions.
	SessionToken = "x-ms-session-token"

	Version = "x-ms-version"
	Date    = "x-ms-date"

	IsQuery              = "x-ms-documentdb-isquery"
	EnableCrossPartition = "x-ms-documentdb-query-enablecrosspartition"
	PartitionKey         = "x-ms-documentdb-partitionkey"
)

// Response headers.
const (
	// RequestCharge is the normalized cost of the request.
	RequestCharge = "x-ms-request-charge"

	// ActivityID is the server correlation id of the request.
	ActivityID = "x-ms-activity-id"

	// RetryAfterMs is sent with 429 responses.
	RetryAfterMs = "x-ms-retry-after-ms"
)

// MaxItemCountDefault lets the server pick the page size.
const MaxItemCountDefault = -1
