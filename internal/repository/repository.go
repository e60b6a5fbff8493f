package repository

import (
	"context"
	"time"

	"ppiviz/internal/domain"
)

// Repository defines the interface for persisted interaction data and layouts
type Repository interface {
	// Interaction response cache
	GetInteractions(ctx context.Context, queryKey string, species int, maxAge time.Duration) ([]byte, bool, error)
	PutInteractions(ctx context.Context, queryKey string, species int, body []byte) error
	PurgeInteractions(ctx context.Context, olderThan time.Time) (int64, error)

	// Layout persistence, keyed by graph fingerprint
	GetLayout(ctx context.Context, fingerprint string, algorithm domain.LayoutAlgorithm) (*domain.Layout, error)
	SaveLayout(ctx context.Context, fingerprint string, layout *domain.Layout) error
	SavePositions(ctx context.Context, fingerprint string, algorithm domain.LayoutAlgorithm, positions []domain.NodePosition) error
	DeleteLayout(ctx context.Context, fingerprint string, algorithm domain.LayoutAlgorithm) error

	// Close releases resources
	Close() error
}
