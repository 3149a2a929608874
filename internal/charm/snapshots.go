// ABOUTME: Push, list, pull and delete whole-database snapshots in charm KV.
// ABOUTME: Each snapshot carries a checksum that is verified on pull.
package charm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/gymlog/internal/fsutil"
)

// Exporter writes a consistent copy of the database to a file.
type Exporter interface {
	Export(ctx context.Context, dst string) error
}

// Snapshot describes one pushed database copy.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Hostname  string    `json:"hostname,omitempty"`
	Note      string    `json:"note,omitempty"`
	Size      int       `json:"size"`
	Checksum  string    `json:"checksum"`
}

// envelope is the stored value: metadata plus the database bytes.
type envelope struct {
	Snapshot
	Data []byte `json:"data"`
}

// Push exports the database and stores it as a new snapshot.
func (c *Client) Push(ctx context.Context, db Exporter, note string) (*Snapshot, error) {
	dir, err := os.MkdirTemp("", "gymlog-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "gymlog.db")
	if err := db.Export(ctx, path); err != nil {
		return nil, fmt.Errorf("export database: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	host, _ := os.Hostname()
	env := envelope{
		Snapshot: Snapshot{
			ID:        uuid.New(),
			CreatedAt: time.Now().UTC(),
			Hostname:  host,
			Note:      note,
			Size:      len(data),
			Checksum:  checksum(data),
		},
		Data: data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.set(SnapshotPrefix+env.ID.String(), raw); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	return &env.Snapshot, nil
}

// List returns snapshot metadata, newest first.
func (c *Client) List() ([]Snapshot, error) {
	values, err := c.listByPrefix(SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(values))
	for _, v := range values {
		env, err := unmarshalJSON[envelope](v)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, env.Snapshot)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Pull writes the snapshot matching idPrefix to dst after verifying its checksum.
func (c *Client) Pull(idPrefix, dst string) (*Snapshot, error) {
	raw, err := c.getByIDPrefix(SnapshotPrefix, idPrefix)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	env, err := unmarshalJSON[envelope](raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if got := checksum(env.Data); got != env.Checksum {
		return nil, fmt.Errorf("snapshot %s is corrupt: checksum %s, want %s", env.ID, got, env.Checksum)
	}
	if err := fsutil.WriteFile(dst, env.Data, 0600); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	return &env.Snapshot, nil
}

// Delete removes the snapshot matching idPrefix.
func (c *Client) Delete(idPrefix string) error {
	if err := c.deleteByIDPrefix(SnapshotPrefix, idPrefix); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
