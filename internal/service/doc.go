// Package service implements the business logic of the node registry.
//
// NodeService sits between the HTTP handlers and the backing services. It
// validates input, bounds each datastore and storage call with a timeout and
// publishes an Event for every change so that push channel clients see
// updates as they happen.
//
// # Errors
//
//   - ErrValidation: required fields were missing; nothing was touched
//   - *OperationError: the datastore or storage client failed
//   - ErrPublish: publishing could not produce a content hash
package service
