package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kdougan/js-notebook/internal/ctxutil"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// maxRequestBytes caps the accepted script size.
const maxRequestBytes = 1 << 20

// Handler serves the evaluation contract on top of any Evaluator.
type Handler struct {
	evaluator secondary.Evaluator
	logger    *slog.Logger
	timeout   time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithEvaluationTimeout bounds each evaluation on the server side. Zero means the
// request context alone decides.
func WithEvaluationTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = d
	}
}

// NewHandler creates a new evaluation handler. A nil logger discards output.
func NewHandler(evaluator secondary.Evaluator, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = ctxutil.LoggerFromContext(context.Background())
	}
	h := &Handler{evaluator: evaluator, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns a mux with the evaluation endpoint registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("POST "+ValidatePath, h)
	return mux
}

// ServeHTTP answers {"output": value} or {"error": message}. Script failures are
// reported with 200; only malformed requests and cancelled evaluations use error
// status codes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	logger := h.logger.With("remote_addr", r.RemoteAddr)
	ctx = ctxutil.WithLogger(ctx, logger)

	var req secondary.EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, secondary.EvaluateResponse{Error: "invalid request: " + err.Error()})
		return
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.evaluator.Evaluate(ctx, req)
	if err != nil {
		status := http.StatusInternalServerError
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			status = http.StatusServiceUnavailable
		}
		logger.Warn("evaluation aborted", "error", err)
		writeJSON(w, status, secondary.EvaluateResponse{Error: err.Error()})
		return
	}
	logger.Debug("evaluation served", "failed", resp.Error != "")
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
