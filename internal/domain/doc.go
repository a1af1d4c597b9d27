// Package domain defines the core types of the node registry.
//
// # Core Types
//
// Node is a registry entry for a peer. Its ID is assigned by the datastore and
// never changes; Active is the only field mutated through the API.
//
// Credential is a statically configured user record holding a bcrypt hash.
//
// Snapshot is the full node set captured at publish time, ordered by ID so
// that identical node sets serialize identically.
//
// ContentHash is the identifier assigned to a published snapshot by the
// content-addressed storage client.
//
// # Design Principles
//
// - No database or external dependencies
// - Value types that are safe to copy
package domain
