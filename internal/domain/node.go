package domain

import "time"

// Node represents a peer known to the registry
type Node struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNode creates an active node with the given title.
// ID and timestamps are assigned by the datastore on creation.
func NewNode(title string) *Node {
	return &Node{
		Title:  title,
		Active: true,
	}
}
