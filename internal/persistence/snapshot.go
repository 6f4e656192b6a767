package persistence

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/reedmace/wildgen/internal/world"
)

// snapshotVersion guards the gob body layout. Bump on any change to
// world.Map, world.Block, or world.Place.
const snapshotVersion = 1

type snapshotHeader struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Size    int   `json:"size"`
	Places  int   `json:"places"`
}

// WriteSnapshot writes the map to path as a zstd stream: one JSON
// header line, then the gob-encoded map.
func WriteSnapshot(path string, m *world.Map) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snapshotHeader{
		Version: snapshotVersion,
		Seed:    m.Seed,
		Size:    m.Size,
		Places:  len(m.Places),
	})
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(m); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

// ReadSnapshot loads a map written by WriteSnapshot.
func ReadSnapshot(path string) (*world.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var h snapshotHeader
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if h.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", h.Version, snapshotVersion)
	}

	var m world.Map
	if err := gob.NewDecoder(br).Decode(&m); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if len(m.Blocks) != m.Size*m.Size {
		return nil, fmt.Errorf("snapshot has %d blocks for size %d", len(m.Blocks), m.Size)
	}
	if len(m.Places) != h.Places {
		return nil, fmt.Errorf("snapshot has %d places, header says %d", len(m.Places), h.Places)
	}
	return &m, nil
}
