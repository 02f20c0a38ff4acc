package index

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_SaveTriggersSync(t *testing.T) {
	store, db := syncTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, db, store, logger, func() { reloads.Add(1) })
		close(done)
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	doc := models.NewDocument()
	doc.Clients = []models.Client{{ID: "c1", Name: "Ana"}}
	if err := store.Save(doc); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		ids, err := db.AllIDs()
		return err == nil && len(ids) == 1
	}, "watcher should index the saved client")

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "reload callback should fire after sync")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}

func TestWatch_IgnoresUnrelatedFiles(t *testing.T) {
	store, db := syncTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, db, store, logger, func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	// A sibling file in the watched directory must not schedule a sync.
	sibling := store.Path() + ".other"
	if err := os.WriteFile(sibling, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if reloads.Load() != 0 {
		t.Errorf("reloads = %d, want 0 for unrelated file", reloads.Load())
	}
}
