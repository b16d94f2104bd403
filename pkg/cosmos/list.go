package cosmos

import (
	"context"
	"errors"
	"net/http"

	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/Sternrassler/docdb-client/pkg/pagination"
	"github.com/Sternrassler/docdb-client/pkg/session"
)

// Pager produces the pages of one listing.
type Pager[T any] = pagination.Pager[*ListResponse[T]]

// listOperation binds a listRequest to the client that sends it. Its fetch
// method is the step function of the listing's pager.
type listOperation[T any] struct {
	client   *Client
	request  listRequest
	itemsKey string
}

func (op listOperation[T]) fetch(ctx context.Context, continuation *string) (*ListResponse[T], error) {
	c := op.client
	resource := string(op.request.resourceType)
	logger := c.logger.With().
		Str("resource", resource).
		Str("path", op.request.path()).
		Logger()

	sessionToken, err := c.sessions.Get(ctx, op.request.scope)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.Warn().Err(err).Str("scope", op.request.scope.String()).Msg("Session token lookup failed")
	}

	req, err := op.request.build(ctx, continuation, sessionToken)
	if err != nil {
		paginationErrorsTotal.WithLabelValues(resource, "request").Inc()
		return nil, err
	}

	resp, err := c.sender.Do(req)
	if err != nil {
		paginationErrorsTotal.WithLabelValues(resource, "transport").Inc()
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		paginationErrorsTotal.WithLabelValues(resource, "status").Inc()
		statusErr := newStatusError(resp)
		logger.Debug().
			Int("status", statusErr.StatusCode).
			Str("activity_id", statusErr.ActivityID).
			Msg("Listing request rejected")
		return nil, statusErr
	}

	page, err := decodeListResponse[T](resp, op.itemsKey)
	if err != nil {
		var metaErr *headers.MetadataError
		if errors.As(err, &metaErr) {
			paginationErrorsTotal.WithLabelValues(resource, "metadata").Inc()
		} else {
			paginationErrorsTotal.WithLabelValues(resource, "decode").Inc()
		}
		return nil, err
	}

	if err := c.sessions.Set(ctx, op.request.scope, page.SessionToken); err != nil {
		logger.Warn().Err(err).Str("scope", op.request.scope.String()).Msg("Session token save failed")
	}

	pagesTotal.WithLabelValues(resource).Inc()
	requestChargeTotal.WithLabelValues(resource).Add(page.Charge)
	pageItems.WithLabelValues(resource).Observe(float64(page.Len()))

	logger.Debug().
		Int("items", page.Len()).
		Float64("charge", page.Charge).
		Str("activity_id", page.ActivityID.String()).
		Bool("more", page.ContinuationToken != nil).
		Msg("Listing page decoded")

	return page, nil
}

func newListPager[T any](c *Client, request listRequest, itemsKey string, continuation *string) *Pager[T] {
	op := listOperation[T]{
		client:   c,
		request:  request,
		itemsKey: itemsKey,
	}
	return pagination.NewPager[*ListResponse[T]](op.fetch,
		pagination.WithContinuation(continuation),
		pagination.WithLogger(c.logger),
	)
}

func (c *Client) listRequest(rt ResourceType, scope session.Key, opts ListOptions, segments ...string) listRequest {
	return listRequest{
		endpoint:     c.endpoint,
		resourceType: rt,
		segments:     segments,
		scope:        scope,
		consistency:  opts.ConsistencyLevel,
		maxItemCount: opts.maxItemCount(),
	}
}
