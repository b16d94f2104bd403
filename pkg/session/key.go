package session

import (
	"strings"
)

// Key identifies the scope a session token applies to.
type Key struct {
	// Account is the database account name.
	Account string

	// Database is the database id.
	Database string

	// Collection is the collection id. Empty for database-level listings.
	Collection string
}

// String generates a deterministic store key.
// Format: docdb:session:account:database[:collection]
//
// Example:
//
//	docdb:session:acme:app:orders
func (k Key) String() string {
	parts := []string{"docdb", "session", k.Account}

	if k.Database != "" {
		parts = append(parts, k.Database)
	}
	if k.Collection != "" {
		parts = append(parts, k.Collection)
	}

	return strings.Join(parts, ":")
}
