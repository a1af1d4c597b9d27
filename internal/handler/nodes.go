package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"nodereg/internal/domain"
	"nodereg/internal/logging"
	"nodereg/internal/service"
)

// NodeService is the business logic behind the node routes
type NodeService interface {
	ListNodes(ctx context.Context) ([]domain.Node, error)
	UpdateStatus(ctx context.Context, nodeID *int64, active *bool) error
	Delete(ctx context.Context, nodeID *int64) error
	Publish(ctx context.Context) (domain.ContentHash, error)
	Published(ctx context.Context, hash domain.ContentHash) (*domain.Snapshot, error)
}

// NodeHandler handles node registry requests
type NodeHandler struct {
	svc    NodeService
	logger logrus.FieldLogger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(svc NodeService, logger logrus.FieldLogger) *NodeHandler {
	return &NodeHandler{svc: svc, logger: logger}
}

// ListResponse is the body of GET /nodes
type ListResponse struct {
	Success bool          `json:"success"`
	Nodes   []domain.Node `json:"nodes"`
}

// PublishedResponse is the body of GET /publish/{hash}
type PublishedResponse struct {
	Success bool          `json:"success"`
	Hash    string        `json:"hash"`
	Nodes   []domain.Node `json:"nodes"`
}

// statusRequest is the body of PUT /nodes
type statusRequest struct {
	NodeID *int64 `json:"node_id"`
	Active *bool  `json:"active"`
}

// deleteRequest is the body of DELETE /nodes
type deleteRequest struct {
	NodeID *int64 `json:"node_id"`
}

// List returns all nodes
func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.ListNodes(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to list nodes")
		writeMessage(w, h.logger, MsgListError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, ListResponse{Success: true, Nodes: nodes}, http.StatusOK)
}

// UpdateStatus sets the active flag of a node
func (h *NodeHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	decodeBody(w, r, &req)

	err := h.svc.UpdateStatus(r.Context(), req.NodeID, req.Active)
	switch {
	case err == nil:
		writeMessage(w, h.logger, MsgSuccess, http.StatusOK)
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, h.logger, MsgMissingFields, http.StatusBadRequest)
	default:
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to update node status")
		writeMessage(w, h.logger, MsgUpdateError, http.StatusInternalServerError)
	}
}

// Delete removes a node
func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	decodeBody(w, r, &req)

	err := h.svc.Delete(r.Context(), req.NodeID)
	switch {
	case err == nil:
		writeMessage(w, h.logger, MsgSuccess, http.StatusOK)
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, h.logger, MsgMissingFields, http.StatusBadRequest)
	default:
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to delete node")
		writeMessage(w, h.logger, MsgDeleteError, http.StatusInternalServerError)
	}
}

// Publish stores the node list snapshot and returns its content hash.
// Failure is reported with status 200 and no hash.
func (h *NodeHandler) Publish(w http.ResponseWriter, r *http.Request) {
	hash, err := h.svc.Publish(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), h.logger).WithError(err).Warn("Failed to publish node list")
		writeMessage(w, h.logger, MsgCannotGetNodes, http.StatusOK)
		return
	}

	writeJSON(w, h.logger, MessageResponse{Message: MsgPublished, Hash: hash.String()}, http.StatusOK)
}

// Published returns a previously published node list by its hash
func (h *NodeHandler) Published(w http.ResponseWriter, r *http.Request) {
	hash := domain.ContentHash(mux.Vars(r)["hash"])

	snapshot, err := h.svc.Published(r.Context(), hash)
	switch {
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, h.logger, MsgInvalidHash, http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrNotPublished):
		writeMessage(w, h.logger, MsgNotPublished, http.StatusNotFound)
		return
	case err != nil:
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to fetch published list")
		writeMessage(w, h.logger, MsgFetchError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, PublishedResponse{Success: true, Hash: hash.String(), Nodes: snapshot.Nodes}, http.StatusOK)
}
