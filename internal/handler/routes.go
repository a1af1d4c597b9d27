package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes installs the node registry routes on r. A nil metrics handler
// leaves /metrics unrouted.
func Routes(r *mux.Router, nodes *NodeHandler, authH *AuthHandler, metrics http.Handler) {
	r.HandleFunc("/login", authH.Login).Methods(http.MethodPost)

	r.HandleFunc("/nodes", nodes.List).Methods(http.MethodGet)
	r.HandleFunc("/nodes", nodes.UpdateStatus).Methods(http.MethodPut)
	r.HandleFunc("/nodes", nodes.Delete).Methods(http.MethodDelete)

	r.HandleFunc("/publish", nodes.Publish).Methods(http.MethodPost)
	r.HandleFunc("/publish/{hash}", nodes.Published).Methods(http.MethodGet)

	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
}
