// Package resource names the resource types of the document database and
// carries the listed type through request contexts.
package resource

import (
	"context"

	"github.com/authzed/ctxkey"
)

// Type names the kind of resource a request addresses.
type Type string

const (
	Databases   Type = "dbs"
	Collections Type = "colls"
	Users       Type = "users"
	Documents   Type = "docs"
)

var typeKey = ctxkey.NewBoxedWithDefault[Type]("")

// WithType returns a context carrying rt. Other values of ctx are kept.
func WithType(ctx context.Context, rt Type) context.Context {
	ctx = typeKey.SetBox(ctx)
	typeKey.Set(ctx, rt)
	return ctx
}

// FromContext returns the type set by WithType, or "" when there is none.
func FromContext(ctx context.Context) Type {
	return typeKey.Value(ctx)
}

// Label returns the metric label for the type of ctx. Requests without a
// type are labelled "other".
func Label(ctx context.Context) string {
	if rt := FromContext(ctx); rt != "" {
		return string(rt)
	}
	return "other"
}
