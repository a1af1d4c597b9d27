package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nodereg/internal/domain"
)

// Options configures a storage client
type Options struct {
	// RepoPath is the badger directory; empty keeps blocks in memory
	RepoPath string
	// SwarmAddr is the listen address for peer traffic
	SwarmAddr string
	// Peers are base URLs of other swarm listeners
	Peers []string
	// Announcer is optional
	Announcer Announcer
	Logger    logrus.FieldLogger
	// HTTPClient is used for peer requests; defaults to a 10s timeout client
	HTTPClient *http.Client
}

// Client is the content-addressed storage client
type Client struct {
	blocks    *BlockStore
	peers     []string
	announcer Announcer
	http      *http.Client
	logger    logrus.FieldLogger

	listener net.Listener
	server   *http.Server

	closeOnce sync.Once
	closeErr  error
}

// Open opens the block repository and starts the swarm listener
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	blocks, err := OpenBlockStore(opts.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open block repository: %w", err)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", opts.SwarmAddr)
	if err != nil {
		blocks.Close()
		return nil, fmt.Errorf("cannot bind swarm address %s: %w", opts.SwarmAddr, err)
	}

	peers := make([]string, 0, len(opts.Peers))
	for _, p := range opts.Peers {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			peers = append(peers, p)
		}
	}

	c := &Client{
		blocks:    blocks,
		peers:     peers,
		announcer: opts.Announcer,
		http:      opts.HTTPClient,
		logger:    opts.Logger,
		listener:  ln,
		server: &http.Server{
			Handler:           newSwarmRouter(blocks, opts.Logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			opts.Logger.WithError(err).Error("Swarm listener stopped")
		}
	}()

	opts.Logger.Infof("Storage repository at %s, swarm listening on %s (%d peers)",
		repoName(opts.RepoPath), ln.Addr(), len(peers))
	return c, nil
}

// SwarmAddr returns the bound swarm address
func (c *Client) SwarmAddr() net.Addr {
	return c.listener.Addr()
}

// Add stores data and returns its content hash. The same bytes always
// produce the same hash. Replication and announcement failures are logged
// and do not fail the call.
func (c *Client) Add(ctx context.Context, data []byte) (domain.ContentHash, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash := HashBlock(data)
	if err := c.blocks.Put(hash, data); err != nil {
		return "", fmt.Errorf("failed to store block: %w", err)
	}

	c.replicate(ctx, hash, data)

	if c.announcer != nil {
		msg := Announcement{Hash: hash, Size: len(data), PublishedAt: time.Now().UTC()}
		if err := c.announcer.Announce(ctx, msg); err != nil {
			c.logger.WithError(err).WithField("hash", hash.String()).Warn("Failed to announce block")
		}
	}
	return hash, nil
}

// Get returns the block for hash from the local repository or a peer
func (c *Client) Get(ctx context.Context, hash domain.ContentHash) ([]byte, error) {
	if _, err := ParseHash(hash.String()); err != nil {
		return nil, err
	}

	data, err := c.blocks.Get(hash)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	for _, peer := range c.peers {
		data, err := c.fetch(ctx, peer, hash)
		if err != nil {
			c.logger.WithError(err).WithField("peer", peer).Debug("Peer fetch failed")
			continue
		}
		if err := c.blocks.Put(hash, data); err != nil {
			c.logger.WithError(err).Warn("Failed to cache fetched block")
		}
		return data, nil
	}
	return nil, ErrNotFound
}

func (c *Client) replicate(ctx context.Context, hash domain.ContentHash, data []byte) {
	var wg sync.WaitGroup
	for _, peer := range c.peers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.push(ctx, peer, hash, data); err != nil {
				c.logger.WithError(err).WithField("peer", peer).Warn("Block replication failed")
			}
		}()
	}
	wg.Wait()
}

func (c *Client) push(ctx context.Context, peer string, hash domain.ContentHash, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, peer+"/blocks/"+hash.String(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer responded %s", resp.Status)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, peer string, hash domain.ContentHash) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, peer+"/blocks/"+hash.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer responded %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlockSize+1))
	if err != nil {
		return nil, err
	}
	if !Verify(hash, data) {
		return nil, errors.New("peer returned block with mismatched hash")
	}
	return data, nil
}

// Close stops the swarm listener, the announcer and the repository
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var errs []error
		if err := c.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if c.announcer != nil {
			c.announcer.Close()
		}
		if err := c.blocks.Close(); err != nil {
			errs = append(errs, err)
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

func repoName(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}
