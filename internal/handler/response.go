package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Response messages of the node registry API
const (
	MsgSuccess          = "Success"
	MsgMissingFields    = "Missing fields"
	MsgListError        = "Error listing nodes"
	MsgUpdateError      = "Error changing node status"
	MsgDeleteError      = "Error removing node"
	MsgPublished        = "List published successfully"
	MsgCannotGetNodes   = "Cannot get nodes list"
	MsgInvalidHash      = "Invalid hash"
	MsgNotPublished     = "List not found"
	MsgFetchError       = "Error fetching list"
	maxRequestBodyBytes = 1 << 20
)

// MessageResponse is the body of mutating and publish responses
type MessageResponse struct {
	Message string `json:"message"`
	Hash    string `json:"hash,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger logrus.FieldLogger, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Warn("Failed to encode JSON")
	}
}

func writeMessage(w http.ResponseWriter, logger logrus.FieldLogger, message string, statusCode int) {
	writeJSON(w, logger, MessageResponse{Message: message}, statusCode)
}

// decodeBody decodes a JSON body into v and reports success. An empty or
// non-JSON body leaves every field of v unset.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		return false
	}
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
