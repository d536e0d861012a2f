// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pals

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/pals/internal/platform/request"
	"github.com/taibuivan/pals/internal/platform/respond"
	"github.com/taibuivan/pals/pkg/pagination"
)

// Handler implements the HTTP layer for the pals pages.
type Handler struct {
	palService *Service
}

// NewHandler constructs a new pals [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{palService: service}
}

// RegisterRoutes mounts the pals endpoints on router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/pals", handler.listPals)
	router.Post("/pals/meet", handler.meet)

	router.Get("/its_a_match/{palUserID}", handler.getMatch)
	router.Post("/its_a_match/{palUserID}", handler.updateBio)
}

/*
GET /pals.

Description: Lists candidate pals for the current user.

Response:
  - 200: []Pal with pagination meta
*/
func (handler *Handler) listPals(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pals, meta, err := handler.palService.ListPals(request.Context(), userID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pals, meta)
}

// meetRequest is the body of POST /pals/meet.
type meetRequest struct {
	PalID int64 `json:"pal_id"`
}

/*
POST /pals/meet.

Description: Asks to be introduced to another pal.

Request:
  - pal_id: int64

Response:
  - 204: Request recorded
  - 400: ValidationError
  - 404: Pal does not exist
  - 409: Already requested
*/
func (handler *Handler) meet(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input meetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.palService.Meet(request.Context(), userID, input.PalID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /its_a_match/{palUserID}.

Response:
  - 200: Profile
  - 404: Pal does not exist
*/
func (handler *Handler) getMatch(writer http.ResponseWriter, request *http.Request) {
	palUserID, err := requestutil.ParamID(request, "palUserID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.palService.Profile(request.Context(), palUserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// bioRequest is the body of POST /its_a_match/{palUserID}.
type bioRequest struct {
	Bio string `json:"bio"`
}

/*
POST /its_a_match/{palUserID}.

Description: Updates the bio of the current user from the match page.

Response:
  - 204: Bio saved
*/
func (handler *Handler) updateBio(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input bioRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.palService.UpdateBio(request.Context(), userID, input.Bio); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
