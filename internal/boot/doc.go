// Package boot starts the backing services of the node registry.
//
// Each backing service is wrapped in a Handle. Starting a handle returns a
// Future that settles exactly once, either with a live service or with a
// StartupFailure. The Initializer starts every handle concurrently and fans the
// results back in: callers receive either a complete Bundle or a BootFailure
// naming the first service that failed. A partially populated bundle is never
// returned.
//
// # Service Kinds
//
// The set of services is fixed at compile time:
//
//   - KindDispatcher: HTTP request dispatcher
//   - KindPushChannel: realtime websocket push channel
//   - KindDatastore: embedded SQLite datastore
//   - KindStorageClient: content-addressed storage client
//
// HandleFor binds each kind to its constructor.
package boot
