// Package handler exposes the record registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ansdns/internal/records/models"
	dErrors "ansdns/pkg/domain-errors"
	"ansdns/pkg/platform/httputil"
	"ansdns/pkg/platform/middleware/request"
	"ansdns/pkg/requestcontext"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 60 * time.Second
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Executor

// Executor runs actions against the persisted contract state.
type Executor interface {
	Execute(ctx context.Context, action models.Action) (*models.Result, error)
}

// HealthCheck reports whether the state backend is reachable.
type HealthCheck func(ctx context.Context) error

// Handler handles record registry endpoints.
type Handler struct {
	logger *slog.Logger
	exec   Executor
	health HealthCheck
}

// New creates a new record Handler. health may be nil.
func New(exec Executor, logger *slog.Logger, health HealthCheck) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, exec: exec, health: health}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(request.Context)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(requestTimeout))

	router.With(request.TransactionID).Post("/actions", h.handleAction)
	router.Get("/domains/{domain}/records", h.handleGetRecords)
	router.Get("/healthz", h.handleHealth)

	r.Mount("/", router)
}

// handleAction evaluates an action body {function, domain, jwk_n, sig, CNAME?, A?, ...}.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in models.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		h.logger.WarnContext(ctx, "invalid action body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	action := models.Action{Input: in}
	if in.Function.IsMutating() {
		action.TransactionID = requestcontext.TransactionID(ctx)
	}
	h.execute(w, r, action)
}

// handleGetRecords is the REST form of getDomainRecords.
func (h *Handler) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	action := models.Action{Input: models.Input{
		Function: models.FunctionGetDomainRecords,
		Domain:   chi.URLParam(r, "domain"),
	}}
	h.execute(w, r, action)
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, action models.Action) {
	result, err := h.exec.Execute(r.Context(), action)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "health check failed", "error", err.Error())
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeStateUnavailable, "state backend unreachable"))
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
