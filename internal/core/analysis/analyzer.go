// Package analysis annotates interaction graphs with centrality scores,
// community labels or spectral cluster labels.
//
// Every method is a pure function of the graph. Methods are looked up in a
// dispatch table keyed by domain.AnalysisMethod.
package analysis

import (
	"fmt"
	"log"
	"time"

	"ppiviz/internal/domain"
)

// Options tunes the iterative methods
type Options struct {
	// EigenMaxIter caps power iteration. Default: 10000
	EigenMaxIter int
	// EigenTol is the per-node tolerance; convergence needs an L1 change
	// below n*EigenTol. Default: 1e-6
	EigenTol float64
	// Clusters is the spectral cluster count. Default: 2
	Clusters int
	// KMeansInit is the number of k-means restarts. Default: 10
	KMeansInit int
	// Resolution is the modularity resolution for Louvain and Leiden. Default: 1
	Resolution float64
	// Seed drives every randomized step so results are reproducible
	Seed uint64
	// TopN is the number of top-ranked nodes logged for centralities. Default: 10
	TopN int
}

// DefaultOptions returns the defaults listed on Options
func DefaultOptions() Options {
	return Options{
		EigenMaxIter: 10000,
		EigenTol:     1e-6,
		Clusters:     2,
		KMeansInit:   10,
		Resolution:   1,
		Seed:         1,
		TopN:         10,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.EigenMaxIter <= 0 {
		o.EigenMaxIter = d.EigenMaxIter
	}
	if o.EigenTol <= 0 {
		o.EigenTol = d.EigenTol
	}
	if o.Clusters <= 0 {
		o.Clusters = d.Clusters
	}
	if o.KMeansInit <= 0 {
		o.KMeansInit = d.KMeansInit
	}
	if o.Resolution <= 0 {
		o.Resolution = d.Resolution
	}
	if o.TopN <= 0 {
		o.TopN = d.TopN
	}
}

// Observer receives analysis telemetry
type Observer interface {
	ObserveAnalysis(method string, elapsed time.Duration, err error)
}

type methodFunc func(g *domain.InteractionGraph, opts Options) (*domain.Annotation, error)

// Analyzer dispatches analysis methods
type Analyzer struct {
	opts     Options
	methods  map[domain.AnalysisMethod]methodFunc
	observer Observer
}

// New creates an analyzer
func New(opts Options) *Analyzer {
	opts.applyDefaults()
	return &Analyzer{
		opts: opts,
		methods: map[domain.AnalysisMethod]methodFunc{
			domain.MethodNone:                  noAnnotation,
			domain.MethodWithLabels:            noAnnotation,
			domain.MethodDegreeCentrality:      degreeCentrality,
			domain.MethodBetweennessCentrality: betweennessCentrality,
			domain.MethodClosenessCentrality:   closenessCentrality,
			domain.MethodEigenvectorCentrality: eigenvectorCentrality,
			domain.MethodCommunityLouvain:      louvain,
			domain.MethodCommunityLeiden:       leiden,
			domain.MethodSpectralClustering:    spectralClustering,
		},
	}
}

// WithObserver attaches telemetry
func (a *Analyzer) WithObserver(o Observer) *Analyzer {
	a.observer = o
	return a
}

// Options returns the effective options
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze runs a method over the graph. none and with_labels return a nil
// annotation.
func (a *Analyzer) Analyze(g *domain.InteractionGraph, method domain.AnalysisMethod) (*domain.Annotation, error) {
	fn, ok := a.methods[method]
	if !ok {
		return nil, &domain.UnsupportedMethodError{Method: string(method)}
	}
	if g == nil {
		return nil, domain.ErrNoGraph
	}

	start := time.Now()
	ann, err := fn(g, a.opts)
	if a.observer != nil {
		a.observer.ObserveAnalysis(string(method), time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", method, err)
	}

	if ann != nil && method.IsCentrality() {
		for i, r := range ann.Top(a.opts.TopN) {
			log.Printf("analysis: %s #%d %s %.4f", method, i+1, r.Node, r.Score)
		}
	}
	if ann != nil && method.IsPartition() {
		log.Printf("analysis: %s found %d groups over %d nodes (Q=%.4f)",
			method, len(ann.Groups()), g.NodeCount(), Modularity(g, ann, a.opts.Resolution))
	}
	return ann, nil
}

func noAnnotation(*domain.InteractionGraph, Options) (*domain.Annotation, error) {
	return nil, nil
}
