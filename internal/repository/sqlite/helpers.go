package sqlite

import (
	"database/sql"
	"time"

	"ppiviz/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToBool converts sql.NullInt64 to bool (0 = false, non-zero = true)
func nullToBool(ni sql.NullInt64) bool {
	return ni.Valid && ni.Int64 != 0
}

// boolToInt converts a bool to the 0/1 integer stored by SQLite
func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// unixToTime converts stored unix nanoseconds to time.Time
func unixToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// ============================================================================
// Position Row Scanner
// ============================================================================

// positionRow holds all columns from a layouts query for scanning
type positionRow struct {
	NodeID string
	X      float64
	Y      float64
	Pinned sql.NullInt64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match positionColumns order exactly: node_id, x, y, pinned
func (r *positionRow) scanArgs() []interface{} {
	return []interface{}{
		&r.NodeID, // 1
		&r.X,      // 2
		&r.Y,      // 3
		&r.Pinned, // 4
	}
}

// toDomain converts the scanned row to a domain.NodePosition
func (r *positionRow) toDomain() *domain.NodePosition {
	p := domain.NewNodePosition(r.NodeID, r.X, r.Y)
	p.Pinned = nullToBool(r.Pinned)
	return p
}

// positionColumns returns the SELECT column list for layout queries
const positionColumns = `node_id, x, y, pinned`
