// Package session keeps the bearer credential of each browser.
//
// A browser is identified by the salesdash_sid cookie. The Manager hydrates
// a *Session for every request from a Store, and live connections share the
// same *Session, so signing out in one tab clears the credential everywhere
// in the process.
//
// The credential is an opaque token issued by the remote API. Its expiry is
// read from the token's JWT exp claim when present, without verifying the
// signature, since the remote API is the authority; otherwise it lasts one
// day.
//
// # Stores
//
//	store := session.NewMemoryStore()            // single node
//	store := session.NewRedisStore(redisClient)  // shared between nodes
//
//	manager := session.NewManager(store)
//	router.Use(manager.Middleware)
//
//	sess := session.FromContext(r.Context())
//	if sess.Authenticated() { ... }
package session
