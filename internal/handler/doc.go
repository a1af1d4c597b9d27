// Package handler implements the HTTP routes of the node registry.
//
// # Routes
//
//	POST   /login    {username, password} -> {success, token}
//	GET    /nodes    -> {success, nodes}
//	PUT    /nodes    {node_id, active} -> {message}
//	DELETE /nodes    {node_id} -> {message}
//	POST   /publish  -> {message, hash}
//	GET    /metrics  prometheus exposition
//
// Every route except /login requires a session token; see the middleware
// package. Mutating routes answer 400 {message:"Missing fields"} when a
// required field is absent and 500 with an operation specific message when
// the datastore fails. Publish failures are reported with status 200 and
// message "Cannot get nodes list".
package handler
