package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"nodereg/internal/domain"
)

// JSONCodec handles JSON snapshot import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

type jsonSnapshot struct {
	Nodes []jsonNode `json:"nodes"`
}

type jsonNode struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Active    *bool     `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Parse imports a snapshot from JSON. Nodes without an active field are active.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var js jsonSnapshot
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&js); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	nodes := make([]domain.Node, 0, len(js.Nodes))
	for _, jn := range js.Nodes {
		node := domain.Node{
			ID:        jn.ID,
			Title:     jn.Title,
			Active:    true,
			CreatedAt: jn.CreatedAt,
			UpdatedAt: jn.UpdatedAt,
		}
		if jn.Active != nil {
			node.Active = *jn.Active
		}
		nodes = append(nodes, node)
	}
	return domain.NewSnapshot(nodes), nil
}

// Export writes the snapshot as compact JSON with nodes ordered by id
func (c *JSONCodec) Export(snapshot *domain.Snapshot, w io.Writer) error {
	if snapshot == nil {
		snapshot = &domain.Snapshot{}
	}
	ordered := domain.NewSnapshot(snapshot.Nodes)

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(ordered); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Marshal returns the encoded bytes of snapshot
func Marshal(enc Encoder, snapshot *domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc.Export(snapshot, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
