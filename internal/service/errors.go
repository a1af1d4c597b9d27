package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks requests with missing or malformed fields
	ErrValidation = errors.New("missing fields")
	// ErrPublish marks a publish that did not produce a content hash
	ErrPublish = errors.New("cannot get nodes list")
	// ErrNotPublished marks a hash that no reachable store holds
	ErrNotPublished = errors.New("list not published")
)

// Operation names used in OperationError
const (
	OpList         = "list"
	OpUpdateStatus = "update_status"
	OpDelete       = "delete"
	OpStore        = "store"
	OpFetch        = "fetch"
)

// OperationError reports a datastore or storage failure
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
