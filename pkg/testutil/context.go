package testutil

import (
	"net/http"

	id "fides/pkg/domain"
	"fides/pkg/requestcontext"
)

// AsCaller stamps an authenticated principal into the request context,
// simulating what the auth middleware does for a valid bearer token.
func AsCaller(req *http.Request, caller id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// AtHeight stamps a logical clock height into the request context,
// simulating the height middleware.
func AtHeight(req *http.Request, height uint64) *http.Request {
	return req.WithContext(requestcontext.WithHeight(req.Context(), height))
}

// AsCallerAt stamps both principal and height, the typical state of an
// authenticated registry request.
func AsCallerAt(req *http.Request, caller id.Identity, height uint64) *http.Request {
	return AtHeight(AsCaller(req, caller), height)
}
