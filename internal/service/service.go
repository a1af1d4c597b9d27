package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nodereg/internal/codec"
	"nodereg/internal/domain"
	"nodereg/internal/repository"
	"nodereg/internal/storage"
)

// ContentStore adds content under its hash and reads it back
type ContentStore interface {
	Add(ctx context.Context, data []byte) (domain.ContentHash, error)
	Get(ctx context.Context, hash domain.ContentHash) ([]byte, error)
}

// PublishRecorder counts publish outcomes
type PublishRecorder interface {
	RecordPublish(success bool)
}

// NodeService provides business logic for node operations
type NodeService struct {
	repo     repository.NodeRepository
	store    ContentStore
	encoder  codec.Encoder
	decoder  codec.Decoder
	eventBus *EventBus
	timeout  time.Duration
	logger   logrus.FieldLogger
	recorder PublishRecorder
}

// Options configures a NodeService
type Options struct {
	// Timeout bounds each datastore or storage call; zero disables it
	Timeout  time.Duration
	Encoder  codec.Encoder
	// Decoder reads published snapshots back; it must match Encoder
	Decoder  codec.Decoder
	Logger   logrus.FieldLogger
	Recorder PublishRecorder
}

// NewNodeService creates a new node service
func NewNodeService(repo repository.NodeRepository, store ContentStore, eventBus *EventBus, opts Options) *NodeService {
	if opts.Encoder == nil {
		opts.Encoder = codec.NewJSONCodec()
	}
	if opts.Decoder == nil {
		opts.Decoder = codec.NewJSONCodec()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	return &NodeService{
		repo:     repo,
		store:    store,
		encoder:  opts.Encoder,
		decoder:  opts.Decoder,
		eventBus: eventBus,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
}

func (s *NodeService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListNodes returns all registered nodes
func (s *NodeService) ListNodes(ctx context.Context) ([]domain.Node, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	nodes, err := s.repo.ListNodes(ctx)
	if err != nil {
		return nil, &OperationError{Op: OpList, Err: err}
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	return nodes, nil
}

// UpdateStatus sets the active flag of a node. A nil id or active is a
// validation failure and leaves the datastore untouched.
func (s *NodeService) UpdateStatus(ctx context.Context, nodeID *int64, active *bool) error {
	if nodeID == nil || active == nil {
		return ErrValidation
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.UpdateNodeStatus(ctx, *nodeID, *active); err != nil {
		return &OperationError{Op: OpUpdateStatus, Err: err}
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeUpdated,
		Payload: NodeStatusPayload{NodeID: *nodeID, Active: *active},
	})
	return nil
}

// Delete removes a node. A nil id is a validation failure.
func (s *NodeService) Delete(ctx context.Context, nodeID *int64) error {
	if nodeID == nil {
		return ErrValidation
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.DeleteNode(ctx, *nodeID); err != nil {
		return &OperationError{Op: OpDelete, Err: err}
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeDeleted,
		Payload: NodePayload{NodeID: *nodeID},
	})
	return nil
}

// Publish stores a snapshot of the current node list and returns its hash.
// Every failure wraps ErrPublish: an unreadable or empty node list as well
// as a storage client that cannot produce a hash.
func (s *NodeService) Publish(ctx context.Context) (domain.ContentHash, error) {
	hash, err := s.publish(ctx)
	if s.recorder != nil {
		s.recorder.RecordPublish(err == nil)
	}
	return hash, err
}

func (s *NodeService) publish(ctx context.Context) (domain.ContentHash, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	nodes, err := s.repo.ListNodes(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Publish could not list nodes")
		return "", fmt.Errorf("%w: %w", ErrPublish, &OperationError{Op: OpList, Err: err})
	}

	snapshot := domain.NewSnapshot(nodes)
	if snapshot.Empty() {
		return "", ErrPublish
	}

	data, err := codec.Marshal(s.encoder, snapshot)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, &OperationError{Op: OpStore, Err: err})
	}

	hash, err := s.store.Add(ctx, data)
	if err != nil {
		s.logger.WithError(err).Warn("Publish could not store snapshot")
		return "", fmt.Errorf("%w: %w", ErrPublish, &OperationError{Op: OpStore, Err: err})
	}

	s.logger.WithFields(logrus.Fields{
		"hash":  hash.String(),
		"nodes": len(snapshot.Nodes),
	}).Info("Node list published")

	s.eventBus.Publish(Event{
		Type:    EventListPublished,
		Payload: PublishedPayload{Hash: hash.String(), Nodes: len(snapshot.Nodes)},
	})
	return hash, nil
}

// Published returns the snapshot stored under hash. The store may fetch it
// from a peer when it is not held locally.
func (s *NodeService) Published(ctx context.Context, hash domain.ContentHash) (*domain.Snapshot, error) {
	if hash.IsZero() {
		return nil, ErrValidation
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.store.Get(ctx, hash)
	switch {
	case errors.Is(err, storage.ErrInvalidHash):
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, hash)
	case err != nil:
		return nil, &OperationError{Op: OpFetch, Err: err}
	}

	snapshot, err := s.decoder.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &OperationError{Op: OpFetch, Err: err}
	}
	return snapshot, nil
}
