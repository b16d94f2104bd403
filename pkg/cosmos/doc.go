// Package cosmos lists and queries resources of a document database account
// page by page.
//
// Every listing operation returns a *pagination.Pager. Each step of the pager
// issues exactly one HTTP request, decodes the page and its metadata into a
// ListResponse, and remembers the continuation token for the next step:
//
//	db := client.Database("app")
//	pager := db.ListUsers(cosmos.ListOptions{MaxItemCount: 100})
//	for page, err := range pager.Pages(ctx) {
//		if err != nil {
//			return err
//		}
//		log.Printf("%d users, %.2f RU, activity %s", page.Count, page.Charge, page.ActivityID)
//	}
//
// Callers that pace pagination themselves read ListResponse.ContinuationToken
// and pass it back through ListOptions.Continuation on a later call. Both modes
// send identical requests.
//
// Session tokens returned by the server are recorded in the client's
// session.Store and sent back on later session-consistent reads of the same
// scope.
//
// Errors are typed: *RequestConstructionError (nothing was sent),
// *StatusError (the server rejected the request), *DecodeError (malformed
// body) and *headers.MetadataError (a mandatory response header was missing
// or malformed). Transport errors are returned unchanged. No error is
// retried by this package.
package cosmos
