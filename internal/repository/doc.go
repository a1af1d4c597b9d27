// Package repository defines the data access interfaces for the node registry.
//
// The sqlite subpackage provides the embedded datastore implementation.
// Updating or deleting a node that does not exist is not an error; callers
// that need to distinguish use GetNode first.
package repository
