// Package session stores session consistency tokens between requests.
//
// Session consistency gives a client monotonic reads: once a write or read at
// some position has been observed, later reads never observe an older state.
// The server expresses the position as an opaque session token returned on
// every response; the client must send the latest token back on subsequent
// reads of the same scope.
//
// A session is scoped to the logical client, not to a single listing. Two
// stores are provided:
//
//   - MemoryStore keeps tokens in process memory.
//   - RedisStore shares tokens between processes that act as one logical
//     client, for example several replicas behind a load balancer.
//
// # Basic Usage
//
//	store := session.NewMemoryStore()
//	key := session.Key{Account: "acme", Database: "app", Collection: "orders"}
//
//	if err := store.Set(ctx, key, token); err != nil {
//		return err
//	}
//
//	token, err := store.Get(ctx, key)
//	if errors.Is(err, session.ErrNoSession) {
//		// first request in this session
//	}
//
// Tokens are treated as opaque strings. The store keeps the most recent token
// per key and never inspects its contents.
//
// # Metrics
//
//   - docdb_session_lookups_total{result} - token lookups by hit/miss
//   - docdb_session_errors_total{operation} - store operation errors
package session
