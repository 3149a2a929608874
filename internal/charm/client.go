// ABOUTME: Charm KV client wrapper for remote gymlog database snapshots.
// ABOUTME: Opens the charm-backed badger store and syncs after writes.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

const (
	dbName = "gymlog"

	// DefaultHost is used when no charm_host is configured.
	DefaultHost = "charm.2389.dev"

	SnapshotPrefix = "snapshot:"
)

// ErrLocked is returned by Open while another process holds the store.
var ErrLocked = errors.New("snapshot store is locked by another process")

// badgerLockMessage is the text badger uses when the directory lock is taken.
// Badger wraps this error without a sentinel, and read-only opens need the
// same lock, so there is no fallback.
const badgerLockMessage = "Cannot acquire directory lock"

// Store is the subset of the charm KV API that Client uses.
type Store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Client stores snapshots in a Store and syncs them with the charm server.
type Client struct {
	kv       Store
	autoSync bool
	mu       sync.RWMutex
}

// Open connects to charm and opens the gymlog KV store. An empty host uses DefaultHost.
func Open(host string) (*Client, error) {
	if host == "" {
		host = DefaultHost
	}
	// Set server before creating the charm client.
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, err
	}

	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return nil, fmt.Errorf("create charm client: %w", err)
	}
	dataDir, err := cc.DataPath()
	if err != nil {
		return nil, fmt.Errorf("charm data path: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dataDir, "kv", dbName)).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(64 << 20)
	opts.Logger = nil

	db, err := kv.Open(cc, dbName, opts)
	if err != nil {
		return nil, openError(err)
	}

	// Pull remote snapshots on startup.
	_ = db.Sync()
	return &Client{kv: db, autoSync: true}, nil
}

func openError(err error) error {
	if strings.Contains(err.Error(), badgerLockMessage) {
		return fmt.Errorf("open charm kv: %w: %w", ErrLocked, err)
	}
	return fmt.Errorf("open charm kv: %w", err)
}

// NewWithStore wraps an already opened Store.
func NewWithStore(s Store) *Client {
	return &Client{kv: s, autoSync: true}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// Sync synchronizes local state with the charm server.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Sync()
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// syncIfEnabled calls Sync if autoSync is enabled. Must be called with mu held.
func (c *Client) syncIfEnabled() {
	if c.autoSync {
		_ = c.kv.Sync()
	}
}

func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	var results [][]byte
	for _, key := range keys {
		if bytes.HasPrefix(key, []byte(prefix)) {
			val, err := c.kv.Get(key)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
	}
	return results, nil
}

// findKey resolves an ID prefix to one full key.
// Returns an error if nothing or more than one key matches.
func (c *Client) findKey(typePrefix, idPrefix string) ([]byte, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	var matches [][]byte
	search := []byte(typePrefix + idPrefix)
	for _, key := range keys {
		if bytes.HasPrefix(key, search) {
			matches = append(matches, key)
			if len(matches) > 1 {
				return nil, fmt.Errorf("ambiguous prefix %s: matches multiple snapshots", idPrefix)
			}
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("snapshot not found: %s", idPrefix)
	}
	return matches[0], nil
}

// getByIDPrefix retrieves a single value by ID prefix match.
func (c *Client) getByIDPrefix(typePrefix, idPrefix string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key, err := c.findKey(typePrefix, idPrefix)
	if err != nil {
		return nil, err
	}
	return c.kv.Get(key)
}

// deleteByIDPrefix deletes a record by ID prefix match.
func (c *Client) deleteByIDPrefix(typePrefix, idPrefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, err := c.findKey(typePrefix, idPrefix)
	if err != nil {
		return err
	}
	if err := c.kv.Delete(key); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
