package sqlite

import (
	"database/sql"
	"time"

	"nodereg/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToBool converts sql.NullInt64 to bool (0 = false, non-zero = true)
func nullToBool(ni sql.NullInt64) bool {
	return ni.Valid && ni.Int64 != 0
}

// boolToInt converts bool to the stored integer form
func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// timeToMillis converts a time to stored unix milliseconds
func timeToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// millisToTime converts stored unix milliseconds to UTC time
func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nodeRow holds all columns from a node query for scanning
type nodeRow struct {
	ID        int64
	Title     sql.NullString
	Active    sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match nodeColumns order exactly
func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Title,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the scanned row to a domain.Node
func (r *nodeRow) toDomain() domain.Node {
	node := domain.Node{
		ID:        r.ID,
		Title:     nullToString(r.Title),
		Active:    nullToBool(r.Active),
		CreatedAt: millisToTime(r.CreatedAt),
		UpdatedAt: millisToTime(r.UpdatedAt),
	}
	if node.UpdatedAt.Before(node.CreatedAt) {
		node.UpdatedAt = node.CreatedAt
	}
	return node
}

// nodeColumns returns the SELECT column list for node queries
const nodeColumns = `id, title, active, created_at, updated_at`
