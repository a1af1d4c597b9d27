package service

import (
	"context"
	"errors"
	"sync"

	"nodereg/internal/domain"
	"nodereg/internal/storage"
)

var errDatastore = errors.New("datastore unavailable")

// fakeRepo is an in-memory NodeRepository that counts calls
type fakeRepo struct {
	mu     sync.Mutex
	nodes  map[int64]domain.Node
	nextID int64
	calls  int
	err    error
	block  bool
}

func newFakeRepo(titles ...string) *fakeRepo {
	r := &fakeRepo{nodes: make(map[int64]domain.Node)}
	for _, title := range titles {
		_ = r.CreateNode(context.Background(), domain.NewNode(title))
	}
	r.calls = 0
	return r
}

func (r *fakeRepo) enter(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	err, block := r.err, r.block
	r.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (r *fakeRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *fakeRepo) ListNodes(ctx context.Context) ([]domain.Node, error) {
	if err := r.enter(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeRepo) GetNode(ctx context.Context, id int64) (*domain.Node, error) {
	if err := r.enter(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &n, nil
}

func (r *fakeRepo) CountNodes(ctx context.Context) (int, error) {
	if err := r.enter(ctx); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes), nil
}

func (r *fakeRepo) CreateNode(ctx context.Context, node *domain.Node) error {
	if err := r.enter(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	node.ID = r.nextID
	r.nodes[node.ID] = *node
	return nil
}

func (r *fakeRepo) UpdateNodeStatus(ctx context.Context, id int64, active bool) error {
	if err := r.enter(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.nodes[id]; ok {
		n.Active = active
		r.nodes[id] = n
	}
	return nil
}

func (r *fakeRepo) DeleteNode(ctx context.Context, id int64) error {
	if err := r.enter(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, id)
	return nil
}

func (r *fakeRepo) Close() error { return nil }

// memStore derives the hash from the content itself
type memStore struct {
	mu    sync.Mutex
	blobs map[domain.ContentHash][]byte
	err   error
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[domain.ContentHash][]byte)}
}

func (s *memStore) Add(ctx context.Context, data []byte) (domain.ContentHash, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h := domain.ContentHash("h-" + string(data))
	s.blobs[h] = data
	return h, nil
}

func (s *memStore) Get(ctx context.Context, hash domain.ContentHash) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[hash]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}
