package repository

import (
	"context"

	"nodereg/internal/domain"
)

// NodeRepository defines data access for registered nodes
type NodeRepository interface {
	// Read operations
	ListNodes(ctx context.Context) ([]domain.Node, error)
	GetNode(ctx context.Context, id int64) (*domain.Node, error)
	CountNodes(ctx context.Context) (int, error)

	// Write operations
	CreateNode(ctx context.Context, node *domain.Node) error
	UpdateNodeStatus(ctx context.Context, id int64, active bool) error
	DeleteNode(ctx context.Context, id int64) error

	// Close releases resources
	Close() error
}
