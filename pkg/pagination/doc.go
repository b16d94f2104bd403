// Package pagination drives continuation-token paginated listings.
//
// A listing is a sequence of HTTP round trips. Each response carries an opaque
// continuation token that the next request must send back; a response without
// a token is the last page. The package models this as an explicit state
// machine:
//
//	state := pagination.Start(nil)
//	for !state.Done {
//		page, next, err := pagination.Step(ctx, state, fetch)
//		...
//		state = next
//	}
//
// Pager wraps the same step function for callers that prefer an iterator:
//
//	pager := pagination.NewPager(fetch)
//	for page, err := range pager.Pages(ctx) {
//		if err != nil {
//			return err
//		}
//		...
//	}
//
// Pages of one listing are always fetched sequentially, because page N+1 needs
// the token decoded from page N. Independent listings can run concurrently
// through a Drainer.
//
// Tokens are never parsed or modified. To resume later, keep the token of the
// last page and seed a new Pager with WithContinuation.
package pagination
