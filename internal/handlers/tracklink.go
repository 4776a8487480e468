package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/serroba/linktrack-go/internal/events"
	"github.com/serroba/linktrack-go/internal/messaging"
	"github.com/serroba/linktrack-go/internal/tracking"
	"go.uber.org/zap"
)

// The /track and /api/create-link endpoints are plain chi handlers rather
// than huma operations: their response bodies and headers are part of the
// external contract and must not be reshaped into problem-details JSON.

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LinkHandler serves tracking link issuance and click redirects.
type LinkHandler struct {
	service           *tracking.Service
	baseURL           string
	publishLinkIssued messaging.Publish[events.LinkIssuedEvent]
	logger            *zap.Logger
}

// NewLinkHandler creates the handler for the tracking endpoints.
func NewLinkHandler(
	service *tracking.Service,
	baseURL string,
	publishLinkIssued messaging.Publish[events.LinkIssuedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:           service,
		baseURL:           baseURL,
		publishLinkIssued: publishLinkIssued,
		logger:            logger,
	}
}

// Track resolves a tracking token: appends a click record and redirects to
// the destination. The query parser percent-decodes the token exactly once.
func (h *LinkHandler) Track(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("data")
	if token == "" {
		writeText(w, http.StatusBadRequest, "Invalid tracking link")

		return
	}

	meta := RequestMetaFromContext(r.Context())

	result, err := h.service.Ingest(r.Context(), token, meta.UserAgent, meta.ClientIP)
	if err != nil {
		h.logger.Error("failed to process tracking click", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Failed to process tracking link")

		return
	}

	if !result.Success {
		writeText(w, http.StatusBadRequest, result.Error)

		return
	}

	w.Header().Set("Location", result.RedirectURL)
	w.WriteHeader(http.StatusFound)
}

type createLinkRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	TargetURL string `json:"targetUrl"`
}

type createLinkResponse struct {
	Success      bool   `json:"success"`
	TrackingLink string `json:"trackingLink"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	TargetURL    string `json:"targetUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateLink issues a tracking link for a recipient and destination URL.
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An unreadable body is treated like any other unexpected failure.
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create tracking link"})

		return
	}

	if req.Name == "" || req.Email == "" || req.TargetURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields: name, email, targetUrl"})

		return
	}

	if !emailPattern.MatchString(req.Email) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid email format"})

		return
	}

	if u, err := url.Parse(req.TargetURL); err != nil || u.Scheme == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid target URL format"})

		return
	}

	trackingLink, err := tracking.BuildTrackingLink(req.Name, req.Email, req.TargetURL, h.baseURL)
	if err != nil {
		h.logger.Error("failed to create tracking link", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create tracking link"})

		return
	}

	h.notifyLinkIssued(r, req)

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, createLinkResponse{
		Success:      true,
		TrackingLink: trackingLink,
		Name:         req.Name,
		Email:        req.Email,
		TargetURL:    req.TargetURL,
	})
}

// CreateLinkOptions answers the CORS preflight for link creation.
func (h *LinkHandler) CreateLinkOptions(w http.ResponseWriter, _ *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusOK)
}

func (h *LinkHandler) notifyLinkIssued(r *http.Request, req createLinkRequest) {
	if h.publishLinkIssued == nil {
		return
	}

	meta := RequestMetaFromContext(r.Context())
	event := &events.LinkIssuedEvent{
		Name:      req.Name,
		Email:     req.Email,
		TargetURL: req.TargetURL,
		IssuedAt:  time.Now().UTC(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishLinkIssued(event); err != nil {
		h.logger.Error("failed to publish link issued event",
			zap.String("email", req.Email),
			zap.Error(err),
		)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
