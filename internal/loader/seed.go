// Package loader reads node seed files used to populate an empty datastore.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nodereg/internal/codec"
	"nodereg/internal/domain"
)

// ErrUnknownFormat is returned for seed files with an unsupported extension
var ErrUnknownFormat = errors.New("unknown seed file format")

// DecoderFor picks a decoder from the file extension
func DecoderFor(path string) (codec.Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return codec.NewYAMLCodec(), nil
	case ".json":
		return codec.NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadNodes reads a seed file and returns its nodes ready for insertion.
// IDs and timestamps in the file are dropped; the datastore assigns them.
func LoadNodes(path string) ([]*domain.Node, error) {
	dec, err := DecoderFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	snapshot, err := dec.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	nodes := make([]*domain.Node, 0, len(snapshot.Nodes))
	for _, n := range snapshot.Nodes {
		if strings.TrimSpace(n.Title) == "" {
			return nil, fmt.Errorf("load %s: node without title", path)
		}
		node := domain.NewNode(n.Title)
		node.Active = n.Active
		nodes = append(nodes, node)
	}
	return nodes, nil
}
