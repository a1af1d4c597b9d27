package boot

import "fmt"

// Kind enumerates the backing services
type Kind int

const (
	KindDispatcher Kind = iota
	KindPushChannel
	KindDatastore
	KindStorageClient
)

var kindNames = [...]string{
	KindDispatcher:    "dispatcher",
	KindPushChannel:   "pushChannel",
	KindDatastore:     "datastore",
	KindStorageClient: "storageClient",
}

// Kinds returns every service kind in declaration order
func Kinds() []Kind {
	return []Kind{KindDispatcher, KindPushChannel, KindDatastore, KindStorageClient}
}

// String returns the logical service name
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}
