package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ppiviz/internal/codec"
	"ppiviz/internal/domain"
	"ppiviz/internal/service"
)

const (
	defaultSuggestLimit = 20
	maxSuggestLimit     = 200
)

// MethodInfo describes one entry of the analysis menu
type MethodInfo struct {
	Name domain.AnalysisMethod `json:"name"`
	Kind string                `json:"kind"`
}

// CatalogResponse lists what a client can choose from
type CatalogResponse struct {
	Methods []MethodInfo             `json:"methods,omitempty"`
	Layouts []domain.LayoutAlgorithm `json:"layouts,omitempty"`
	Formats []string                 `json:"formats,omitempty"`
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Genes    int    `json:"genes"`
	Sessions int    `json:"sessions"`
}

// CatalogHandler serves gene lookups and the method and layout menus
type CatalogHandler struct {
	svc *service.PPIService
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(svc *service.PPIService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Register adds the catalog routes to mux
func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/genes", h.SuggestGenes)
	mux.HandleFunc("GET /api/genes/{name}", h.ResolveGene)
	mux.HandleFunc("GET /api/methods", h.ListMethods)
	mux.HandleFunc("GET /api/layouts", h.ListLayouts)
	mux.HandleFunc("GET /healthz", h.Health)
}

// SuggestGenes completes a gene name prefix
func (h *CatalogHandler) SuggestGenes(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxSuggestLimit)
	}
	writeJSON(w, h.svc.Resolver().Suggest(r.URL.Query().Get("prefix"), limit), http.StatusOK)
}

// ResolveGene returns the identifiers of one gene
func (h *CatalogHandler) ResolveGene(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.Resolver().Resolve(r.PathValue("name"))
	if err != nil {
		var unknown *domain.UnknownGeneError
		if errors.As(err, &unknown) {
			writeError(w, "Gene not found", err.Error(), http.StatusNotFound)
			return
		}
		writeServiceError(w, "Failed to resolve gene", err)
		return
	}
	writeJSON(w, id, http.StatusOK)
}

// ListMethods returns the analysis menu
func (h *CatalogHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods := domain.AllMethods()
	out := make([]MethodInfo, 0, len(methods))
	for _, m := range methods {
		out = append(out, MethodInfo{Name: m, Kind: methodKind(m)})
	}
	writeJSON(w, CatalogResponse{Methods: out}, http.StatusOK)
}

// ListLayouts returns the layout menu and the export formats
func (h *CatalogHandler) ListLayouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, CatalogResponse{
		Layouts: domain.AllLayouts(),
		Formats: codec.Formats(),
	}, http.StatusOK)
}

// Health reports liveness
func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:   "ok",
		Genes:    h.svc.Resolver().Count(),
		Sessions: h.svc.SessionCount(),
	}, http.StatusOK)
}

func methodKind(m domain.AnalysisMethod) string {
	switch {
	case m.IsCentrality():
		return "centrality"
	case m.IsPartition():
		return "partition"
	default:
		return "display"
	}
}
