package storage

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// maxBlockSize bounds blocks accepted from peers
const maxBlockSize = 16 << 20

// swarmHandler serves the local block store to peers
type swarmHandler struct {
	blocks *BlockStore
	logger logrus.FieldLogger
}

func newSwarmRouter(blocks *BlockStore, logger logrus.FieldLogger) *mux.Router {
	h := &swarmHandler{blocks: blocks, logger: logger}
	r := mux.NewRouter()
	r.HandleFunc("/blocks/{hash}", h.getBlock).Methods(http.MethodGet)
	r.HandleFunc("/blocks/{hash}", h.putBlock).Methods(http.MethodPut)
	return r
}

func (h *swarmHandler) getBlock(w http.ResponseWriter, r *http.Request) {
	hash, err := ParseHash(mux.Vars(r)["hash"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.blocks.Get(hash)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to read block")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (h *swarmHandler) putBlock(w http.ResponseWriter, r *http.Request) {
	hash, err := ParseHash(mux.Vars(r)["hash"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBlockSize+1))
	if err != nil {
		http.Error(w, "failed to read block", http.StatusBadRequest)
		return
	}
	if len(data) > maxBlockSize {
		http.Error(w, "block too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !Verify(hash, data) {
		http.Error(w, "hash does not match content", http.StatusUnprocessableEntity)
		return
	}

	if err := h.blocks.Put(hash, data); err != nil {
		h.logger.WithError(err).Error("Failed to store block")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
