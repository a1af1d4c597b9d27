package boot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"nodereg/internal/config"
	"nodereg/internal/dispatcher"
	"nodereg/internal/hub"
	"nodereg/internal/metrics"
	"nodereg/internal/repository/sqlite"
	"nodereg/internal/storage"
)

// Deps are shared by all service constructors
type Deps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Constructor builds the handle for one service kind
type Constructor func(deps Deps) Handle

// Registry binds every service kind to its constructor
var Registry = [...]Constructor{
	KindDispatcher:    newDispatcherHandle,
	KindPushChannel:   newPushChannelHandle,
	KindDatastore:     newDatastoreHandle,
	KindStorageClient: newStorageHandle,
}

// DefaultHandles builds one handle per kind from the registry
func DefaultHandles(deps Deps) []Handle {
	handles := make([]Handle, 0, len(Registry))
	for _, kind := range Kinds() {
		handles = append(handles, Registry[kind](deps))
	}
	return handles
}

func serviceLogger(deps Deps, kind Kind) logrus.FieldLogger {
	return deps.Logger.WithField("service", kind.String())
}

func newDispatcherHandle(deps Deps) Handle {
	cfg := deps.Config.Services
	return NewHandle(KindDispatcher, cfg.StartupTimeout.Duration(), func(ctx context.Context) (Live, error) {
		return dispatcher.Listen(ctx, cfg.Dispatcher.Addr, serviceLogger(deps, KindDispatcher))
	})
}

func newPushChannelHandle(deps Deps) Handle {
	cfg := deps.Config.Services
	return NewHandle(KindPushChannel, cfg.StartupTimeout.Duration(), func(ctx context.Context) (Live, error) {
		var observer hub.ClientObserver
		if deps.Metrics != nil {
			observer = deps.Metrics
		}
		return hub.Listen(ctx, cfg.PushChannel.Addr, serviceLogger(deps, KindPushChannel), observer)
	})
}

func newDatastoreHandle(deps Deps) Handle {
	cfg := deps.Config.Services
	return NewHandle(KindDatastore, cfg.StartupTimeout.Duration(), func(ctx context.Context) (Live, error) {
		repo, err := sqlite.Open(ctx, cfg.Datastore.Path, cfg.Datastore.MustExist)
		if err != nil {
			return nil, err
		}
		serviceLogger(deps, KindDatastore).Infof("Database opened: %s", cfg.Datastore.Path)
		return repo, nil
	})
}

func newStorageHandle(deps Deps) Handle {
	cfg := deps.Config.Services
	return NewHandle(KindStorageClient, cfg.StartupTimeout.Duration(), func(ctx context.Context) (Live, error) {
		logger := serviceLogger(deps, KindStorageClient)
		opts := storage.Options{
			RepoPath:  cfg.Storage.RepoPath,
			SwarmAddr: cfg.Storage.SwarmAddr,
			Peers:     cfg.Storage.Peers,
			Logger:    logger,
		}
		if url := cfg.Storage.Announce.NATSURL; url != "" {
			ann, err := storage.NewNATSAnnouncer(url, cfg.Storage.Announce.Subject, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to connect announcer: %w", err)
			}
			opts.Announcer = ann
		}

		client, err := storage.Open(ctx, opts)
		if err != nil {
			if opts.Announcer != nil {
				opts.Announcer.Close()
			}
			return nil, err
		}
		return client, nil
	})
}

// Dispatcher returns the bundled dispatcher
func (b *Bundle) Dispatcher() *dispatcher.Dispatcher {
	return bundled[*dispatcher.Dispatcher](b, KindDispatcher)
}

// PushChannel returns the bundled push channel
func (b *Bundle) PushChannel() *hub.Hub {
	return bundled[*hub.Hub](b, KindPushChannel)
}

// Datastore returns the bundled datastore
func (b *Bundle) Datastore() *sqlite.Repository {
	return bundled[*sqlite.Repository](b, KindDatastore)
}

// StorageClient returns the bundled storage client
func (b *Bundle) StorageClient() *storage.Client {
	return bundled[*storage.Client](b, KindStorageClient)
}
