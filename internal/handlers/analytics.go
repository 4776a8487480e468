package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linktrack-go/internal/tracking"
	"go.uber.org/zap"
)

// AnalyticsHandler exposes click analytics queries.
type AnalyticsHandler struct {
	service *tracking.Service
	logger  *zap.Logger
}

// NewAnalyticsHandler creates the analytics handler.
func NewAnalyticsHandler(service *tracking.Service, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// RecentClicksRequest is the request for the recent clicks feed.
type RecentClicksRequest struct {
	Limit int `default:"100" doc:"Maximum number of clicks to return" maximum:"100" minimum:"1" query:"limit"`
}

// ClicksResponse is an ordered list of click records, newest first.
type ClicksResponse struct {
	Body struct {
		Clicks []tracking.ClickRecord `json:"clicks"`
	}
}

// ClicksByEmailRequest is the request for one visitor's click history.
type ClicksByEmailRequest struct {
	Email string `doc:"Visitor email address" example:"a@b.com" path:"email"`
}

// StatsResponse is the summary statistics for the click ledger.
type StatsResponse struct {
	Body tracking.Stats
}

// RecentClicks returns the newest clicks across all tracking links.
func (h *AnalyticsHandler) RecentClicks(ctx context.Context, req *RecentClicksRequest) (*ClicksResponse, error) {
	clicks, err := h.service.RecentClicks(ctx, req.Limit)
	if err != nil {
		h.logger.Error("failed to load recent clicks", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load click analytics")
	}

	resp := &ClicksResponse{}
	resp.Body.Clicks = clicks

	return resp, nil
}

// ClicksByEmail returns every click for one visitor, newest first.
func (h *AnalyticsHandler) ClicksByEmail(ctx context.Context, req *ClicksByEmailRequest) (*ClicksResponse, error) {
	clicks, err := h.service.ClicksByEmail(ctx, req.Email)
	if err != nil {
		h.logger.Error("failed to load clicks by email",
			zap.String("email", req.Email),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to load click analytics")
	}

	resp := &ClicksResponse{}
	resp.Body.Clicks = clicks

	return resp, nil
}

// Stats returns summary counts over the whole ledger.
func (h *AnalyticsHandler) Stats(ctx context.Context, _ *struct{}) (*StatsResponse, error) {
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.Error("failed to compute click stats", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load click analytics")
	}

	return &StatsResponse{Body: stats}, nil
}
