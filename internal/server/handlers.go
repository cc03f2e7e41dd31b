package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/codec"
	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/service/share"
	"github.com/kapu/career-card-go/pkg/errors"
)

// Resolver is the pipeline surface the HTTP layer depends on.
type Resolver interface {
	Resolve(ctx context.Context, req *domain.Request) (*domain.Resolution, error)
}

// ShareReader loads persisted share records.
type ShareReader interface {
	Get(ctx context.Context, id string) (*share.Record, error)
}

type Handlers struct {
	resolver   Resolver
	shares     ShareReader
	redisOK    func(ctx context.Context) bool
	postgresOK func(ctx context.Context) error
	logger     *zap.Logger
}

func NewHandlers(resolver Resolver, shares ShareReader, redisOK func(ctx context.Context) bool, postgresOK func(ctx context.Context) error, logger *zap.Logger) *Handlers {
	return &Handlers{
		resolver:   resolver,
		shares:     shares,
		redisOK:    redisOK,
		postgresOK: postgresOK,
		logger:     logger,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/cards", h.handleCreateCard)
	mux.HandleFunc("GET /api/v1/cards/{id}", h.handleGetCard)
	mux.HandleFunc("GET /api/v1/shared/{token}", h.handleGetShared)
	mux.HandleFunc("GET /api/v1/aspirations", h.handleListAspirations)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// cardResponse is the POST payload: the resolution plus the stateless share
// token so clients can build links that survive database loss.
type cardResponse struct {
	Origin     domain.Origin `json:"origin"`
	WasCached  bool          `json:"was_cached"`
	ShareID    string        `json:"share_id"`
	ShareToken string        `json:"share_token"`
	Card       *domain.Card  `json:"card"`
}

func (h *Handlers) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.CodeValidation, "request body is not valid JSON")
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), &req)
	if err != nil {
		h.writeResolveError(w, &req, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cardResponse{
		Origin:     resolution.Origin,
		WasCached:  resolution.WasCached,
		ShareID:    resolution.ShareID,
		ShareToken: codec.Encode(resolution.Card, req.Aspiration),
		Card:       resolution.Card,
	})
}

func (h *Handlers) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := h.shares.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("Share record load failed", zap.String("share_id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, errors.CodeStore, "failed to load card")
		return
	}
	if record == nil {
		h.writeError(w, http.StatusNotFound, errors.CodeCardError, "card not found")
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handlers) handleGetShared(w http.ResponseWriter, r *http.Request) {
	shared, ok := codec.Decode(r.PathValue("token"))
	if !ok {
		h.writeError(w, http.StatusNotFound, errors.CodeCardError, "card not found")
		return
	}

	h.writeJSON(w, http.StatusOK, shared)
}

func (h *Handlers) handleListAspirations(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"aspirations": domain.AllAspirations(),
	})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	redisUp := h.redisOK(r.Context())
	postgresUp := h.postgresOK(r.Context()) == nil

	status := http.StatusOK
	if !redisUp || !postgresUp {
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, status, map[string]any{
		"redis":    redisUp,
		"postgres": postgresUp,
	})
}

// writeResolveError maps pipeline failures onto HTTP statuses. Generation
// and store details stay in the logs; clients get a generic message.
func (h *Handlers) writeResolveError(w http.ResponseWriter, req *domain.Request, err error) {
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		h.writeError(w, validationErr.StatusCode, validationErr.Code, validationErr.Message)
		return
	}

	h.logger.Error("Card resolution failed",
		zap.String("subject", req.Name),
		zap.String("aspiration", req.Aspiration),
		zap.Error(err),
	)

	var generationErr *errors.GenerationError
	if stderrors.As(err, &generationErr) {
		h.writeError(w, http.StatusInternalServerError, errors.CodeGeneration, "card generation failed")
		return
	}

	h.writeError(w, http.StatusInternalServerError, errors.CodeCardError, "internal error")
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Response encoding failed", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
