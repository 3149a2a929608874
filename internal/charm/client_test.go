// ABOUTME: Unit tests for charm snapshot storage against an in-memory store.
// ABOUTME: Covers push/pull round trips, prefix lookup and lock detection.
package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

type memStore struct {
	data  map[string][]byte
	syncs int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Set(key, value []byte) error {
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, errors.New("key not found")
	}
	return v, nil
}

func (m *memStore) Delete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func (m *memStore) Keys() ([][]byte, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (m *memStore) Sync() error  { m.syncs++; return nil }
func (m *memStore) Close() error { return nil }

type fileExporter []byte

func (f fileExporter) Export(_ context.Context, dst string) error {
	return os.WriteFile(dst, f, 0600)
}

func TestPushPullRoundTrip(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store)
	payload := []byte("SQLite format 3\x00 pretend database")

	snap, err := c.Push(context.Background(), fileExporter(payload), "before cut")
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if snap.Size != len(payload) || snap.Note != "before cut" {
		t.Errorf("unexpected snapshot metadata: %+v", snap)
	}
	if store.syncs != 1 {
		t.Errorf("syncs = %d, want 1", store.syncs)
	}

	dst := filepath.Join(t.TempDir(), "restored.db")
	pulled, err := c.Pull(snap.ID.String()[:8], dst)
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if pulled.ID != snap.ID {
		t.Errorf("pulled %s, want %s", pulled.ID, snap.ID)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("pulled bytes differ from pushed bytes")
	}
}

func TestListNewestFirst(t *testing.T) {
	c := NewWithStore(newMemStore())
	ctx := context.Background()

	first, err := c.Push(ctx, fileExporter("one"), "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Push(ctx, fileExporter("two"), "")
	if err != nil {
		t.Fatal(err)
	}

	list, err := c.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List returned %d snapshots, want 2", len(list))
	}
	if !list[0].CreatedAt.After(list[1].CreatedAt) && list[0].CreatedAt != list[1].CreatedAt {
		t.Error("expected newest snapshot first")
	}
	ids := map[string]bool{list[0].ID.String(): true, list[1].ID.String(): true}
	if !ids[first.ID.String()] || !ids[second.ID.String()] {
		t.Error("List is missing a pushed snapshot")
	}
}

func TestPullDetectsCorruption(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store)

	snap, err := c.Push(context.Background(), fileExporter("payload"), "")
	if err != nil {
		t.Fatal(err)
	}
	key := SnapshotPrefix + snap.ID.String()
	env, err := unmarshalJSON[envelope](store.data[key])
	if err != nil {
		t.Fatal(err)
	}
	env.Checksum = strings.Repeat("0", 64)
	raw, _ := json.Marshal(env)
	store.data[key] = raw

	if _, err := c.Pull(snap.ID.String(), filepath.Join(t.TempDir(), "x.db")); err == nil {
		t.Error("expected checksum error")
	}
}

func TestDeleteByPrefix(t *testing.T) {
	c := NewWithStore(newMemStore())
	snap, err := c.Push(context.Background(), fileExporter("payload"), "")
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Delete("does-not-exist"); err == nil {
		t.Error("expected not found error")
	}
	if err := c.Delete(snap.ID.String()[:6]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, _ := c.List()
	if len(list) != 0 {
		t.Errorf("List returned %d snapshots after delete", len(list))
	}
}

func TestOpenErrorReportsLock(t *testing.T) {
	locked := errors.New(`Cannot acquire directory lock on "/tmp/kv/gymlog".  Another process is using this Badger database.: resource temporarily unavailable`)
	if err := openError(locked); !errors.Is(err, ErrLocked) {
		t.Errorf("openError(lock) = %v, want ErrLocked", err)
	}

	other := errors.New("could not open BadgerDB, bad encrypt keys")
	err := openError(other)
	if errors.Is(err, ErrLocked) {
		t.Errorf("openError(%v) should not report a lock", other)
	}
	if !errors.Is(err, other) {
		t.Errorf("openError should wrap the cause, got %v", err)
	}
}
