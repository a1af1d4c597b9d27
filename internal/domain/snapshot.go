package domain

import "sort"

// Snapshot is the immutable view of the full node set taken at publish time
type Snapshot struct {
	Nodes []Node `json:"nodes"`
}

// NewSnapshot copies nodes into a snapshot ordered by ID so that equal
// node sets always produce equal snapshots
func NewSnapshot(nodes []Node) *Snapshot {
	copied := make([]Node, len(nodes))
	copy(copied, nodes)
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].ID < copied[j].ID
	})
	return &Snapshot{Nodes: copied}
}

// Empty reports whether the snapshot holds no nodes
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Nodes) == 0
}
