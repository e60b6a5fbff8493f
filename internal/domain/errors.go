package domain

import (
	"errors"
	"fmt"
)

// ErrNoGraph is returned when an analysis or layout is requested before a
// graph has been built for the session
var ErrNoGraph = errors.New("no interaction graph for this session")

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// UnknownGeneError reports a gene name absent from the identifier table
type UnknownGeneError struct {
	Gene string
}

func (e *UnknownGeneError) Error() string {
	return fmt.Sprintf("unknown gene %q", e.Gene)
}

// UnsupportedMethodError reports an analysis method outside the fixed menu
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported analysis method %q", e.Method)
}

// UnsupportedLayoutError reports a layout algorithm outside the fixed menu
type UnsupportedLayoutError struct {
	Algorithm string
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("unsupported layout algorithm %q", e.Algorithm)
}

// ConvergenceError reports an iterative analysis that hit its iteration cap
type ConvergenceError struct {
	Method     AnalysisMethod
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge in %d iterations", e.Method, e.Iterations)
}
