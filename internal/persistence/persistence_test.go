package persistence

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/reedmace/wildgen/internal/world"
)

func testMap(t *testing.T, seed int64) *world.Map {
	t.Helper()
	cfg := world.DefaultGenConfig()
	cfg.Seed = seed
	return world.Generate(cfg, world.DefaultTypeTable())
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHasWorldOnEmptyDB(t *testing.T) {
	db := openTestDB(t)
	ok, err := db.HasWorld()
	if err != nil {
		t.Fatalf("HasWorld: %v", err)
	}
	if ok {
		t.Fatal("empty database reports a saved world")
	}
	if _, err := db.LoadWorld(); err == nil {
		t.Fatal("LoadWorld succeeded on an empty database")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	m := testMap(t, 5)

	if err := db.SaveWorld(m); err != nil {
		t.Fatalf("save: %v", err)
	}
	ok, err := db.HasWorld()
	if err != nil || !ok {
		t.Fatalf("HasWorld after save = (%v, %v), want (true, nil)", ok, err)
	}

	got, err := db.LoadWorld()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Seed != m.Seed || got.Size != m.Size {
		t.Fatalf("loaded seed/size %d/%d, want %d/%d", got.Seed, got.Size, m.Seed, m.Size)
	}
	if !reflect.DeepEqual(got.Places, m.Places) {
		t.Fatal("loaded places differ from the saved ones")
	}
	if !reflect.DeepEqual(got.Blocks, m.Blocks) {
		t.Fatal("loaded blocks differ from the saved ones")
	}
}

func TestSaveReplacesPreviousWorld(t *testing.T) {
	db := openTestDB(t)
	first := testMap(t, 5)
	second := testMap(t, 6)

	if err := db.SaveWorld(first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := db.SaveWorld(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := db.LoadWorld()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Seed != second.Seed {
		t.Fatalf("loaded seed %d, want %d", got.Seed, second.Seed)
	}
	if !reflect.DeepEqual(got.Blocks, second.Blocks) {
		t.Fatal("loaded blocks are not the second save")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("note", "alpha"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("note", "beta"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	got, err := db.GetMeta("note")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if got != "beta" {
		t.Fatalf("meta = %q, want %q", got, "beta")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := testMap(t, 9)
	path := filepath.Join(t.TempDir(), "world.snap")

	if err := WriteSnapshot(path, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatal("snapshot round trip changed the map")
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "absent.snap")); err == nil {
		t.Error("reading a missing snapshot succeeded")
	}

	garbled := filepath.Join(t.TempDir(), "garbled.snap")
	if err := os.WriteFile(garbled, []byte("not a snapshot"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadSnapshot(garbled); err == nil {
		t.Error("reading a garbled snapshot succeeded")
	}
}
