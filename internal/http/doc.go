// Package httpapp provides the HTTP surface of the article backend.
//
// Every request flows through the same chain: CORS headers, identity
// attachment, then (for mutating routes) an identity gate, then the
// handler. Handlers talk to the article store and answer JSON; the static
// front-end bundle is served for everything outside /api.
package httpapp
