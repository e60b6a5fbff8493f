package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"ppiviz/internal/codec"
	"ppiviz/internal/domain"
	"ppiviz/internal/hub"
	"ppiviz/internal/service"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
}

// SelectGenesRequest replaces the gene selection of a session
type SelectGenesRequest struct {
	Genes []string `json:"genes" validate:"max=50,dive,required,max=64"`
}

// SelectMethodRequest switches the analysis method
type SelectMethodRequest struct {
	Method string `json:"method" validate:"required,max=64"`
}

// SetLayoutRequest switches the layout algorithm
type SetLayoutRequest struct {
	Algorithm string `json:"algorithm" validate:"required,max=64"`
}

// PositionUpdate is one dragged node
type PositionUpdate struct {
	NodeID string  `json:"node_id" validate:"required,max=128"`
	X      float64 `json:"x" validate:"gte=-1000000,lte=1000000"`
	Y      float64 `json:"y" validate:"gte=-1000000,lte=1000000"`
	Pinned bool    `json:"pinned"`
}

// positionBatch wraps the array body so the elements can be validated
type positionBatch struct {
	Positions []PositionUpdate `validate:"required,min=1,max=10000,dive"`
}

// SavePositionsResponse reports how many positions were applied
type SavePositionsResponse struct {
	Applied int `json:"applied"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SessionHandler serves the session API
type SessionHandler struct {
	svc *service.PPIService
	hub *hub.Hub
}

// NewSessionHandler creates a session handler. h may be nil, in which case
// the event stream is unavailable.
func NewSessionHandler(svc *service.PPIService, h *hub.Hub) *SessionHandler {
	return &SessionHandler{svc: svc, hub: h}
}

// Register adds the session routes to mux
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetView)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/genes", h.SelectGenes)
	mux.HandleFunc("PUT /api/sessions/{id}/method", h.SelectMethod)
	mux.HandleFunc("PUT /api/sessions/{id}/layout", h.SetLayout)
	mux.HandleFunc("PUT /api/sessions/{id}/positions", h.SavePositions)
	mux.HandleFunc("GET /api/sessions/{id}/export/{format}", h.Export)
	mux.HandleFunc("GET /api/sessions/{id}/events", h.Events)
}

// CreateSession opens a new session
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.NewSession(), http.StatusCreated)
}

// GetView returns the current view of a session
func (h *SessionHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.View(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "Failed to get session", err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// DeleteSession closes a session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.PathValue("id")); err != nil {
		writeServiceError(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectGenes rebuilds the session graph for a new selection
func (h *SessionHandler) SelectGenes(w http.ResponseWriter, r *http.Request) {
	var req SelectGenesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	view, err := h.svc.SelectGenes(r.Context(), r.PathValue("id"), req.Genes)
	if err != nil {
		writeServiceError(w, "Failed to select genes", err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// SelectMethod re-annotates the session graph
func (h *SessionHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	var req SelectMethodRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	view, err := h.svc.SelectMethod(r.Context(), r.PathValue("id"), req.Method)
	if err != nil {
		writeServiceError(w, "Failed to apply method", err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// SetLayout recomputes node positions with another algorithm
func (h *SessionHandler) SetLayout(w http.ResponseWriter, r *http.Request) {
	var req SetLayoutRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	view, err := h.svc.SetLayout(r.Context(), r.PathValue("id"), req.Algorithm)
	if err != nil {
		writeServiceError(w, "Failed to set layout", err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// SavePositions stores dragged node positions
func (h *SessionHandler) SavePositions(w http.ResponseWriter, r *http.Request) {
	var batch positionBatch
	if !decodeRequest(w, r, &batch.Positions) {
		return
	}
	if err := requestValidate.Struct(batch); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	positions := make([]domain.NodePosition, len(batch.Positions))
	for i, p := range batch.Positions {
		positions[i] = domain.NodePosition{NodeID: p.NodeID, X: p.X, Y: p.Y, Pinned: p.Pinned}
	}
	applied, err := h.svc.SavePositions(r.Context(), r.PathValue("id"), positions)
	if err != nil {
		writeServiceError(w, "Failed to save positions", err)
		return
	}
	writeJSON(w, SavePositionsResponse{Applied: applied}, http.StatusOK)
}

// Export downloads the current view. The body is rendered before any header
// is written so failures still get a JSON error.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		writeServiceError(w, "Failed to export", err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(r.PathValue("id"), format, &buf); err != nil {
		writeServiceError(w, "Failed to export", err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=network.%s", exporter.Format()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("handler: export write failed: %v", err)
	}
}

// Events streams the session's events over SSE
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.svc.Session(id); err != nil {
		writeServiceError(w, "Failed to subscribe", err)
		return
	}
	if h.hub == nil {
		writeError(w, "Event stream unavailable", "", http.StatusServiceUnavailable)
		return
	}
	h.hub.Serve(w, r, id)
}

// decodeRequest reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := requestValidate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return false
		}
	}
	return true
}

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	var (
		unknownGene   *domain.UnknownGeneError
		badMethod     *domain.UnsupportedMethodError
		badLayout     *domain.UnsupportedLayoutError
		badFormat     *codec.UnsupportedFormatError
		noConvergence *domain.ConvergenceError
	)
	switch {
	case errors.As(err, &unknownGene),
		errors.As(err, &badMethod),
		errors.As(err, &badLayout),
		errors.As(err, &badFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoGraph):
		return http.StatusConflict
	case errors.As(err, &noConvergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("handler: %s: %v", msg, err)
	}
	writeError(w, msg, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("handler: failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("handler: failed to encode error response: %v", err)
	}
}
