package cosmos

import (
	"context"

	"github.com/Sternrassler/docdb-client/pkg/resource"
)

// ResourceType names the kind of resource a request lists.
type ResourceType = resource.Type

const (
	ResourceDatabases   = resource.Databases
	ResourceCollections = resource.Collections
	ResourceUsers       = resource.Users
	ResourceDocuments   = resource.Documents
)

// WithResourceType returns a context carrying the listed resource type. The
// transport reads it for metrics and logs. Other values of ctx are kept.
func WithResourceType(ctx context.Context, rt ResourceType) context.Context {
	return resource.WithType(ctx, rt)
}

// ResourceTypeFromContext returns the resource type set by WithResourceType,
// or "" when there is none.
func ResourceTypeFromContext(ctx context.Context) ResourceType {
	return resource.FromContext(ctx)
}
