// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/pals/internal/platform/apperr"
	"github.com/taibuivan/pals/internal/platform/ctxutil"
	"github.com/taibuivan/pals/internal/platform/validate"
	"github.com/taibuivan/pals/internal/users/session"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ParamID parses a named URL parameter as a positive numeric identifier.

Returns:
  - int64: The parsed identifier
  - error: apperr.ValidationError when the parameter is not a positive integer
*/
func ParamID(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
Identity extracts the session identity from the request context.

Returns nil if the request is anonymous.
*/
func Identity(request *http.Request) *session.Identity {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredIdentity ensures the request carries a live session.

Returns:
  - *session.Identity: The authenticated identity
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredIdentity(request *http.Request) (*session.Identity, error) {
	identity := ctxutil.GetIdentity(request.Context())
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - int64: User ID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (int64, error) {
	identity, err := RequiredIdentity(request)
	if err != nil {
		return 0, err
	}
	return identity.UserID, nil
}
