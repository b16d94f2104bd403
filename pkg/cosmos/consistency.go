package cosmos

import (
	"fmt"
	"strings"
)

// ConsistencyLevel is a per-request read consistency override.
// The zero value uses the account default.
type ConsistencyLevel string

const (
	ConsistencyStrong           ConsistencyLevel = "Strong"
	ConsistencyBoundedStaleness ConsistencyLevel = "BoundedStaleness"
	ConsistencySession          ConsistencyLevel = "Session"
	ConsistencyConsistentPrefix ConsistencyLevel = "ConsistentPrefix"
	ConsistencyEventual         ConsistencyLevel = "Eventual"
)

var consistencyLevels = []ConsistencyLevel{
	ConsistencyStrong,
	ConsistencyBoundedStaleness,
	ConsistencySession,
	ConsistencyConsistentPrefix,
	ConsistencyEventual,
}

// Validate reports whether l is empty or a known level.
func (l ConsistencyLevel) Validate() error {
	if l == "" {
		return nil
	}
	for _, known := range consistencyLevels {
		if l == known {
			return nil
		}
	}
	return fmt.Errorf("unknown consistency level %q", string(l))
}

// ParseConsistencyLevel parses a level name case-insensitively.
// An empty string yields the account default.
func ParseConsistencyLevel(s string) (ConsistencyLevel, error) {
	if s == "" {
		return "", nil
	}
	for _, known := range consistencyLevels {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown consistency level %q", s)
}

// usesSession reports whether requests at this level take part in session
// consistency. The account default is assumed to be Session.
func (l ConsistencyLevel) usesSession() bool {
	return l == "" || l == ConsistencySession
}
