// Package middleware provides HTTP middleware for the canopy server,
// including bearer-token authentication.
package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"connectrpc.com/authn"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	Subject string
}

// NewToken creates a ConnectRPC authentication middleware that checks
// incoming Bearer tokens against a single static token. Comparison is
// constant time.
//
// On success a Principal is stored in the request context via
// authn.SetInfo, so handlers can retrieve it with authn.GetInfo.
func NewToken(token string) *authn.Middleware {
	authenticate := func(_ context.Context, r *http.Request) (any, error) {
		presented, found := authn.BearerToken(r)
		if !found || presented == "" {
			return nil, authn.Errorf("missing or invalid bearer token")
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return nil, authn.Errorf("invalid token")
		}
		return Principal{Subject: "token"}, nil
	}

	return authn.NewMiddleware(authenticate)
}
