// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pals

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/pals/internal/platform/validate"
	"github.com/taibuivan/pals/pkg/pagination"
)

// # Service Layer

// Service orchestrates pal discovery and introductions.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

/*
ListPals returns a page of candidates for the viewer.

Parameters:
  - context: context.Context
  - viewerID: int64
  - params: pagination.Params

Returns:
  - []Pal: The page
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) ListPals(context context.Context, viewerID int64, params pagination.Params) ([]Pal, pagination.Meta, error) {
	pals, total, err := service.repository.List(context, viewerID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("pal_service_list_failed: %w", err)
	}
	return pals, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Meet records an introduction request from requester to pal.

Parameters:
  - context: context.Context
  - requesterID: int64
  - palID: int64

Returns:
  - error: Validation, conflict or storage failures
*/
func (service *Service) Meet(context context.Context, requesterID, palID int64) error {
	validator := &validate.Validator{}
	err := validator.
		Positive("pal_id", palID).
		Custom("pal_id", palID == requesterID, "Cannot meet yourself").
		Err()
	if err != nil {
		return err
	}

	if err := service.repository.CreateRequest(context, requesterID, palID); err != nil {
		return fmt.Errorf("pal_service_meet_failed: %w", err)
	}

	service.logger.Info("pal_request_created",
		slog.Int64("requester_id", requesterID),
		slog.Int64("requestee_id", palID),
	)
	return nil
}

// Profile loads the match profile of a pal.
func (service *Service) Profile(context context.Context, palUserID int64) (*Profile, error) {
	profile, err := service.repository.FindProfile(context, palUserID)
	if err != nil {
		return nil, fmt.Errorf("pal_service_profile_failed: %w", err)
	}
	return profile, nil
}

// UpdateBio replaces the bio of the current user.
func (service *Service) UpdateBio(context context.Context, userID int64, bio string) error {
	if err := service.repository.UpdateBio(context, userID, bio); err != nil {
		return fmt.Errorf("pal_service_update_bio_failed: %w", err)
	}

	service.logger.Info("pal_bio_updated", slog.Int64("user_id", userID))
	return nil
}
