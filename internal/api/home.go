// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	requestutil "github.com/taibuivan/pals/internal/platform/request"
	"github.com/taibuivan/pals/internal/platform/respond"
)

// homeView is the landing page payload.
type homeView struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
	Verified      bool   `json:"verified"`
}

// Home handles GET / for both anonymous and signed-in visitors.
func Home(writer http.ResponseWriter, request *http.Request) {
	view := homeView{}
	if identity := requestutil.Identity(request); identity != nil {
		view.Authenticated = true
		view.Name = identity.Name
		view.Verified = identity.IsVerified
	}
	respond.OK(writer, view)
}
