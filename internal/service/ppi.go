package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"ppiviz/internal/adapter"
	"ppiviz/internal/codec"
	"ppiviz/internal/core/analysis"
	"ppiviz/internal/core/composer"
	"ppiviz/internal/core/layout"
	"ppiviz/internal/domain"
	"ppiviz/internal/repository"
	"ppiviz/internal/resolver"
)

// Options configures PPIService
type Options struct {
	// DefaultLayout is the algorithm of new sessions. Default: spring
	DefaultLayout domain.LayoutAlgorithm
}

// PPIService runs the interaction pipeline for sessions
type PPIService struct {
	resolver *resolver.Resolver
	fetcher  *adapter.Fetcher
	analyzer *analysis.Analyzer
	layouts  *layout.Engine
	repo     repository.Repository
	sessions *SessionStore
	eventBus *EventBus
	opts     Options
}

// NewPPIService wires the pipeline. repo may be nil, in which case layouts are
// kept in memory only.
func NewPPIService(
	res *resolver.Resolver,
	fetcher *adapter.Fetcher,
	analyzer *analysis.Analyzer,
	layouts *layout.Engine,
	repo repository.Repository,
	sessions *SessionStore,
	eventBus *EventBus,
	opts Options,
) *PPIService {
	if opts.DefaultLayout == "" {
		opts.DefaultLayout = domain.LayoutSpring
	}
	return &PPIService{
		resolver: res,
		fetcher:  fetcher,
		analyzer: analyzer,
		layouts:  layouts,
		repo:     repo,
		sessions: sessions,
		eventBus: eventBus,
		opts:     opts,
	}
}

// Resolver exposes the identifier resolver for lookups
func (s *PPIService) Resolver() *resolver.Resolver {
	return s.resolver
}

// SessionCount returns the number of live sessions
func (s *PPIService) SessionCount() int {
	return s.sessions.Len()
}

// NewSession opens an empty session
func (s *PPIService) NewSession() SessionInfo {
	sess := s.sessions.Create(s.opts.DefaultLayout)
	s.publish(EventSessionCreated, sess.ID, nil)
	log.Printf("service: session %s created", sess.ID)
	return sess.info()
}

// DeleteSession closes a session
func (s *PPIService) DeleteSession(id string) error {
	if err := s.sessions.Delete(id); err != nil {
		return err
	}
	s.publish(EventSessionDeleted, id, nil)
	return nil
}

// Session returns a summary of a session
func (s *PPIService) Session(id string) (SessionInfo, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return SessionInfo{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.info(), nil
}

// lock fetches a session and holds its lock until the returned func runs
func (s *PPIService) lock(id string) (*Session, func(), error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, nil, err
	}
	sess.mu.Lock()
	return sess, func() {
		sess.touchedAt = s.sessions.now()
		sess.mu.Unlock()
	}, nil
}

// SelectGenes rebuilds the session graph for a new gene selection. An unknown
// gene fails the request and leaves the session untouched. Non-coding genes
// are skipped without a fetch. The method is reset to none.
func (s *PPIService) SelectGenes(ctx context.Context, id string, genes []string) (*domain.NetworkView, error) {
	sess, unlock, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	genes = domain.NormalizeSelection(genes)
	if len(genes) == 0 {
		sess.reset()
		s.publish(EventGraphBuilt, sess.ID, sess.info())
		return s.view(sess), nil
	}

	ids, err := s.resolver.ResolveSelection(genes)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		graphs   []*domain.InteractionGraph
		coding   []domain.Identifier
		skipped  []string
		ensembl  = make(map[string]string, len(ids))
		queryIDs []string
	)
	for _, ident := range ids {
		ensembl[ident.Gene] = domain.EnsemblGeneURL(ident.GenomicID)
		if !ident.HasProtein() {
			log.Printf("service: %s (%s) has no translated protein, skipping fetch", ident.Gene, ident.GenomicID)
			skipped = append(skipped, ident.Gene)
			continue
		}
		coding = append(coding, ident)
		queryIDs = append(queryIDs, ident.Gene)
		graphs = append(graphs, s.fetcher.FetchFirst(ctx, ident.Candidates(), s.fetcher.Threshold()))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("select genes: %w", err)
	}

	sess.reset()
	sess.genes = genes
	sess.ids = ids
	sess.links.Ensembl = ensembl

	g := composer.Compose(graphs...)
	switch {
	case len(coding) == 0:
		sess.status = domain.StatusNoProtein
	case g == nil:
		sess.status = domain.StatusNoInteractions
	default:
		composer.TagRoles(g, ids)
		sess.graph = g
		sess.status = domain.StatusOK
		sess.links.String = s.fetcher.Link(ctx, queryIDs)

		l, err := s.placeGraph(ctx, g, sess.algorithm, nil)
		if err != nil {
			sess.reset()
			return nil, err
		}
		sess.layout = l
	}
	if len(skipped) > 0 && sess.status == domain.StatusOK {
		sess.message = fmt.Sprintf("%s does not translate to any protein", strings.Join(skipped, ", "))
	}

	log.Printf("service: session %s selected %v -> %s in %s", sess.ID, genes, sess.status, time.Since(start).Round(time.Millisecond))
	s.publish(EventGraphBuilt, sess.ID, sess.info())
	return s.view(sess), nil
}

// SelectMethod annotates the cached graph. Nothing is fetched. When the
// analysis fails the previous method and annotation stay in place.
func (s *PPIService) SelectMethod(ctx context.Context, id string, name string) (*domain.NetworkView, error) {
	method, err := domain.ParseMethod(name)
	if err != nil {
		return nil, err
	}

	sess, unlock, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if sess.graph == nil {
		return nil, domain.ErrNoGraph
	}
	ann, err := s.analyzer.Analyze(sess.graph, method)
	if err != nil {
		return nil, err
	}
	sess.method = method
	sess.annotation = ann

	s.publish(EventAnalysisApplied, sess.ID, map[string]string{"method": string(method)})
	return s.view(sess), nil
}

// SetLayout switches the layout algorithm. Pinned nodes keep their place.
func (s *PPIService) SetLayout(ctx context.Context, id string, name string) (*domain.NetworkView, error) {
	algorithm, err := domain.ParseLayout(name)
	if err != nil {
		return nil, err
	}

	sess, unlock, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess.algorithm = algorithm
	if sess.graph == nil {
		return s.view(sess), nil
	}
	l, err := s.placeGraph(ctx, sess.graph, algorithm, sess.layout)
	if err != nil {
		return nil, err
	}
	sess.layout = l

	s.publish(EventLayoutUpdated, sess.ID, map[string]string{"algorithm": string(algorithm)})
	return s.view(sess), nil
}

// SavePositions stores dragged node positions. Unknown nodes are ignored; the
// number of applied positions is returned.
func (s *PPIService) SavePositions(ctx context.Context, id string, positions []domain.NodePosition) (int, error) {
	sess, unlock, err := s.lock(id)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if sess.graph == nil || sess.layout == nil {
		return 0, domain.ErrNoGraph
	}

	applied := make([]domain.NodePosition, 0, len(positions))
	for _, p := range positions {
		if !sess.graph.HasNode(p.NodeID) {
			continue
		}
		if p.Pinned {
			sess.layout.Pin(p.NodeID, p.X, p.Y)
		} else {
			sess.layout.Set(p.NodeID, p.X, p.Y)
			sess.layout.Positions[p.NodeID].Pinned = false
		}
		applied = append(applied, p)
	}

	if s.repo != nil && len(applied) > 0 {
		if err := s.repo.SavePositions(ctx, sess.graph.Fingerprint(), sess.layout.Algorithm, applied); err != nil {
			return 0, fmt.Errorf("save positions: %w", err)
		}
	}

	s.publish(EventPositionsSaved, sess.ID, map[string]int{"count": len(applied)})
	return len(applied), nil
}

// View renders the current session state
func (s *PPIService) View(id string) (*domain.NetworkView, error) {
	sess, unlock, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.view(sess), nil
}

// Export writes the current view in the named format
func (s *PPIService) Export(id, format string, w io.Writer) error {
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}
	view, err := s.View(id)
	if err != nil {
		return err
	}
	return exporter.Export(view, w)
}

// TablesReloaded broadcasts an identifier table reload
func (s *PPIService) TablesReloaded(err error) {
	payload := map[string]any{"genes": s.resolver.Count()}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.publish(EventTablesReloaded, "", payload)
}

// SweepSessions closes sessions idle for longer than maxIdle
func (s *PPIService) SweepSessions(maxIdle time.Duration) int {
	expired := s.sessions.Sweep(maxIdle)
	for _, id := range expired {
		s.publish(EventSessionDeleted, id, map[string]string{"reason": "idle"})
	}
	if len(expired) > 0 {
		log.Printf("service: closed %d idle sessions", len(expired))
	}
	return len(expired)
}

// placeGraph loads a stored layout for the graph or computes a new one
func (s *PPIService) placeGraph(ctx context.Context, g *domain.InteractionGraph, algorithm domain.LayoutAlgorithm, prev *domain.Layout) (*domain.Layout, error) {
	fingerprint := g.Fingerprint()
	if s.repo != nil {
		stored, err := s.repo.GetLayout(ctx, fingerprint, algorithm)
		if err != nil {
			log.Printf("service: stored layout %s/%s unavailable: %v", fingerprint, algorithm, err)
		}
		if stored != nil && stored.Covers(g) {
			layout.KeepPinned(stored, prev, g)
			return stored, nil
		}
	}

	l, err := s.layouts.Relayout(g, prev, algorithm)
	if err != nil {
		return nil, err
	}
	if s.repo != nil {
		if err := s.repo.SaveLayout(ctx, fingerprint, l); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("service: failed to persist layout %s/%s: %v", fingerprint, algorithm, err)
		}
	}
	return l, nil
}

func (s *PPIService) view(sess *Session) *domain.NetworkView {
	var v *domain.NetworkView
	switch sess.status {
	case domain.StatusOK:
		v = layout.BuildView(layout.ViewInput{
			Graph:      sess.graph,
			Layout:     sess.layout,
			Method:     sess.method,
			Annotation: sess.annotation,
			Genes:      sess.genes,
			Links:      sess.links,
		})
		v.Message = sess.message
	default:
		v = domain.PlaceholderView(sess.genes, sess.status)
		v.Links = sess.links
		v.Layout = sess.algorithm
	}
	if v.Genes == nil {
		v.Genes = []string{}
	}
	return v
}

func (s *PPIService) publish(t EventType, sessionID string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(Event{Type: t, SessionID: sessionID, Payload: payload})
}
