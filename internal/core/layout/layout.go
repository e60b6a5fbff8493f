// Package layout places interaction graph nodes in the plane and turns a
// graph, its layout and an optional annotation into a renderable NetworkView.
//
// Every algorithm writes raw coordinates that are then centred and scaled
// into [-1, 1]. Pinned positions from a previous layout survive a relayout.
package layout

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"ppiviz/internal/domain"
)

// Options tunes the layout engine
type Options struct {
	// Iterations caps spring updates. Default: 200
	Iterations int
	// Repulsion is the global repulsive force of the spring model. Default: 1
	Repulsion float64
	// Rate is the spring gradient step. Default: 0.05
	Rate float64
	// Theta is the Barnes-Hut approximation constant. Default: 0.2
	Theta float64
	// SpiralResolution is the angle step of the spiral layout. Default: 0.35
	SpiralResolution float64
	// Seed drives the random and spring layouts
	Seed uint64
}

// DefaultOptions returns the defaults listed on Options
func DefaultOptions() Options {
	return Options{
		Iterations:       200,
		Repulsion:        1,
		Rate:             0.05,
		Theta:            0.2,
		SpiralResolution: 0.35,
		Seed:             1,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.Repulsion <= 0 {
		o.Repulsion = d.Repulsion
	}
	if o.Rate <= 0 {
		o.Rate = d.Rate
	}
	if o.Theta <= 0 {
		o.Theta = d.Theta
	}
	if o.SpiralResolution <= 0 {
		o.SpiralResolution = d.SpiralResolution
	}
}

// Observer receives layout telemetry
type Observer interface {
	ObserveLayout(algorithm string, elapsed time.Duration)
}

// placeFunc returns one coordinate per node, indexed like g.Nodes()
type placeFunc func(g *domain.InteractionGraph, opts Options) ([]r2.Vec, error)

// Engine dispatches layout algorithms
type Engine struct {
	opts       Options
	algorithms map[domain.LayoutAlgorithm]placeFunc
	observer   Observer
}

// New creates a layout engine
func New(opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{
		opts: opts,
		algorithms: map[domain.LayoutAlgorithm]placeFunc{
			domain.LayoutSpring:      spring,
			domain.LayoutCircular:    circular,
			domain.LayoutKamadaKawai: kamadaKawai,
			domain.LayoutRandom:      random,
			domain.LayoutShell:       shell,
			domain.LayoutSpectral:    spectral,
			domain.LayoutSpiral:      spiral,
		},
	}
}

// WithObserver attaches telemetry
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.opts
}

// Compute places every node of g with the given algorithm
func (e *Engine) Compute(g *domain.InteractionGraph, algorithm domain.LayoutAlgorithm) (*domain.Layout, error) {
	place, ok := e.algorithms[algorithm]
	if !ok {
		return nil, &domain.UnsupportedLayoutError{Algorithm: string(algorithm)}
	}
	if g == nil {
		return nil, domain.ErrNoGraph
	}

	start := time.Now()
	pos, err := place(g, e.opts)
	if e.observer != nil {
		e.observer.ObserveLayout(string(algorithm), time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", algorithm, err)
	}
	rescale(pos)

	l := domain.NewLayout(algorithm)
	for i, name := range g.Nodes() {
		l.Set(name, pos[i].X, pos[i].Y)
	}
	log.Printf("layout: %s placed %d nodes in %s", algorithm, g.NodeCount(), time.Since(start).Round(time.Microsecond))
	return l, nil
}

// Relayout computes a fresh layout and carries over the pinned nodes of prev
// that still exist in g
func (e *Engine) Relayout(g *domain.InteractionGraph, prev *domain.Layout, algorithm domain.LayoutAlgorithm) (*domain.Layout, error) {
	l, err := e.Compute(g, algorithm)
	if err != nil {
		return nil, err
	}
	KeepPinned(l, prev, g)
	return l, nil
}

// KeepPinned copies pinned positions of prev into l for nodes present in g
func KeepPinned(l, prev *domain.Layout, g *domain.InteractionGraph) {
	if prev == nil {
		return
	}
	for name, p := range prev.Positions {
		if p.Pinned && g.HasNode(name) {
			l.Pin(name, p.X, p.Y)
		}
	}
}

// rescale centres positions on the origin and scales the largest absolute
// coordinate to 1
func rescale(pos []r2.Vec) {
	if len(pos) == 0 {
		return
	}
	var mean r2.Vec
	for _, p := range pos {
		mean = r2.Add(mean, p)
	}
	mean = r2.Scale(1/float64(len(pos)), mean)

	var lim float64
	for i := range pos {
		pos[i] = r2.Sub(pos[i], mean)
		lim = math.Max(lim, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	if lim == 0 {
		return
	}
	for i := range pos {
		pos[i] = r2.Scale(1/lim, pos[i])
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(newSource(seed))
}

func newSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
