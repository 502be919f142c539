package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/middleware"
	"github.com/ngclient/ngutils/pkg/ngutils"
	"github.com/ngclient/ngutils/pkg/snapshot"
)

// maxClientIDLen bounds client IDs, which also end up in snapshot keys.
const maxClientIDLen = 128

// Client is the live page model of one client and its watch hub.
type Client struct {
	ID      string
	Service *ngutils.Service
	Hub     *Hub

	created     time.Time
	unsubscribe func()
}

// ClientManager owns the live clients. Clients are created on first use
// and restored from the snapshot store when one is configured.
type ClientManager struct {
	mu      sync.Mutex
	clients map[string]*Client

	// closing holds clients whose snapshot is still being written. Get
	// waits for the channel to close before loading the snapshot.
	closing map[string]chan struct{}

	// closed counts finished closes. A Get whose load overlapped a close
	// loads again.
	closed uint64

	store     snapshot.Store
	metrics   *middleware.Metrics
	writeWait time.Duration
	logger    *slog.Logger
}

// NewClientManager creates a manager. store and metrics may be nil.
func NewClientManager(store snapshot.Store, metrics *middleware.Metrics, writeWait time.Duration, logger *slog.Logger) *ClientManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientManager{
		clients:   make(map[string]*Client),
		closing:   make(map[string]chan struct{}),
		store:     store,
		metrics:   metrics,
		writeWait: writeWait,
		logger:    logger.With("component", "clients"),
	}
}

// Get returns the client with the given ID, creating it when needed.
// While the client is being closed, Get waits for its snapshot.
func (m *ClientManager) Get(ctx context.Context, id string) (*Client, error) {
	if !ValidClientID(id) {
		return nil, errors.New("N021").WithDetailf("client ID %q", id)
	}

	for {
		m.mu.Lock()
		if c, ok := m.clients[id]; ok {
			m.mu.Unlock()
			return c, nil
		}
		if done, ok := m.closing[id]; ok {
			m.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return nil, errors.New("N010").WithDetailf("client %q is closing", id).Wrap(ctx.Err())
			}
		}
		gen := m.closed
		m.mu.Unlock()

		// Load outside the lock so a slow store does not stall other clients.
		restored, err := m.load(ctx, id)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		if c, ok := m.clients[id]; ok {
			m.mu.Unlock()
			return c, nil
		}
		if _, ok := m.closing[id]; ok || m.closed != gen {
			m.mu.Unlock()
			continue
		}

		c := m.newClient(id)
		if restored != nil {
			c.Service.Restore(*restored)
		}
		m.clients[id] = c
		m.mu.Unlock()

		m.metrics.ClientOpened()
		m.logger.Info("client opened", "client", id, "restored", restored != nil)
		return c, nil
	}
}

func (m *ClientManager) load(ctx context.Context, id string) (*ngutils.Model, error) {
	if m.store == nil {
		return nil, nil
	}
	model, found, err := m.store.Load(ctx, id)
	if err != nil {
		m.metrics.SnapshotError("load")
		return nil, errors.FromError(err, "N010")
	}
	if !found {
		return nil, nil
	}
	return &model, nil
}

func (m *ClientManager) newClient(id string) *Client {
	opts := []ngutils.Option{
		ngutils.WithLogger(m.logger),
		ngutils.WithClientID(id),
	}
	if m.metrics != nil {
		opts = append(opts, ngutils.WithRecorder(m.metrics))
	}
	svc := ngutils.New(opts...)
	hub := NewHub(m.writeWait, m.metrics, m.logger.With("client", id))
	return &Client{
		ID:          id,
		Service:     svc,
		Hub:         hub,
		created:     time.Now(),
		unsubscribe: svc.Subscribe(hub.Broadcast),
	}
}

// Lookup returns a live client without creating one.
func (m *ClientManager) Lookup(id string) (*Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	return c, ok
}

// Close snapshots the client (when a store is configured) and drops it.
// Closing an unknown client is not an error. The client is dropped even
// when the snapshot fails.
func (m *ClientManager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	c, ok := m.clients[id]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	done := m.detachLocked(id)
	m.mu.Unlock()

	err := m.release(ctx, c)
	m.finish(id, done)
	return err
}

// detachLocked moves a live client to the closing set.
func (m *ClientManager) detachLocked(id string) chan struct{} {
	done := make(chan struct{})
	delete(m.clients, id)
	m.closing[id] = done
	return done
}

func (m *ClientManager) finish(id string, done chan struct{}) {
	m.mu.Lock()
	delete(m.closing, id)
	m.closed++
	m.mu.Unlock()
	close(done)
}

func (m *ClientManager) release(ctx context.Context, c *Client) error {
	c.unsubscribe()
	c.Hub.Close()
	m.metrics.ClientClosed()

	var err error
	if m.store != nil {
		if err = m.store.Save(ctx, c.ID, c.Service.Model()); err != nil {
			m.metrics.SnapshotError("save")
			m.logger.Error("snapshot failed", "client", c.ID, "error", err)
			err = errors.FromError(err, "N011")
		}
	}
	m.logger.Info("client closed", "client", c.ID, "age", time.Since(c.created).Round(time.Millisecond))
	return err
}

// Shutdown closes every client, snapshotting each one.
func (m *ClientManager) Shutdown(ctx context.Context) error {
	type closingClient struct {
		c    *Client
		done chan struct{}
	}

	m.mu.Lock()
	clients := make([]closingClient, 0, len(m.clients))
	for id, c := range m.clients {
		clients = append(clients, closingClient{c: c, done: m.detachLocked(id)})
	}
	m.mu.Unlock()

	var errs []error
	for _, cc := range clients {
		if err := m.release(ctx, cc.c); err != nil {
			errs = append(errs, err)
		}
		m.finish(cc.c.ID, cc.done)
	}
	return stderrors.Join(errs...)
}

// IDs returns the live client IDs in sorted order.
func (m *ClientManager) IDs() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of live clients.
func (m *ClientManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// ValidClientID reports whether id is usable as a client ID: 1 to 128
// characters of ASCII letters, digits, '-', '_' or '.', not "." or "..".
func ValidClientID(id string) bool {
	if id == "" || len(id) > maxClientIDLen || id == "." || id == ".." {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
