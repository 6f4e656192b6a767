// Package persistence stores generated worlds in SQLite and exports
// them as compressed snapshots.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/reedmace/wildgen/internal/world"
)

const formatVersion = 1

const (
	metaSeed    = "seed"
	metaSize    = "size"
	metaVersion = "format_version"
)

// DB wraps a SQLite connection holding one world.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS places (
		ord INTEGER PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		population INTEGER NOT NULL,
		monster_kind INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS blocks (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		type INTEGER NOT NULL,
		place INTEGER NOT NULL,
		flags INTEGER NOT NULL,
		level INTEGER NOT NULL,
		rarity INTEGER NOT NULL,
		PRIMARY KEY (x, y)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasWorld reports whether a saved world is present.
func (db *DB) HasWorld() (bool, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", metaSeed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorld writes the whole map, replacing any previous save.
func (db *DB) SaveWorld(m *world.Map) error {
	if err := db.savePlaces(m.Places); err != nil {
		return fmt.Errorf("save places: %w", err)
	}
	if err := db.saveBlocks(m); err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	if err := db.SaveMeta(metaSeed, strconv.FormatInt(m.Seed, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(metaSize, strconv.Itoa(m.Size)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(metaVersion, strconv.Itoa(formatVersion)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world saved", "seed", m.Seed, "size", m.Size, "places", len(m.Places))
	return nil
}

func (db *DB) savePlaces(places []world.Place) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM places"); err != nil {
		return err
	}

	for i, p := range places {
		_, err := tx.Exec(`INSERT INTO places
			(ord, key, name, kind, x, y, width, height, seed, population, monster_kind)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i+1, p.Key, p.Name, p.Kind, p.X, p.Y, p.Width, p.Height,
			p.Seed, p.Population, p.MonsterKind,
		)
		if err != nil {
			return fmt.Errorf("insert place %q: %w", p.Key, err)
		}
	}

	return tx.Commit()
}

func (db *DB) saveBlocks(m *world.Map) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM blocks"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO blocks
		(x, y, type, place, flags, level, rarity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			b := m.BlockAt(x, y)
			_, err := stmt.Exec(x, y, b.Type, b.Place, b.Flags, b.Level, b.Rarity)
			if err != nil {
				return fmt.Errorf("insert block (%d,%d): %w", x, y, err)
			}
		}
	}

	return tx.Commit()
}

type blockRow struct {
	X      int    `db:"x"`
	Y      int    `db:"y"`
	Type   uint16 `db:"type"`
	Place  uint16 `db:"place"`
	Flags  uint16 `db:"flags"`
	Level  uint8  `db:"level"`
	Rarity uint8  `db:"rarity"`
}

// LoadWorld reconstructs the saved map.
func (db *DB) LoadWorld() (*world.Map, error) {
	seedStr, err := db.GetMeta(metaSeed)
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	seed, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seed %q: %w", seedStr, err)
	}
	sizeStr, err := db.GetMeta(metaSize)
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return nil, fmt.Errorf("parse size %q: %w", sizeStr, err)
	}

	m := world.NewMap(size, seed)

	if err := db.conn.Select(&m.Places, `SELECT
		key, name, kind, x, y, width, height, seed, population, monster_kind
		FROM places ORDER BY ord`); err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}

	var rows []blockRow
	if err := db.conn.Select(&rows, "SELECT x, y, type, place, flags, level, rarity FROM blocks"); err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	if len(rows) != size*size {
		return nil, fmt.Errorf("world has %d blocks, want %d", len(rows), size*size)
	}
	for _, r := range rows {
		b := m.BlockAt(r.X, r.Y)
		if b == nil {
			return nil, fmt.Errorf("block (%d,%d) outside a size-%d world", r.X, r.Y, size)
		}
		*b = world.Block{
			Type:   r.Type,
			Place:  r.Place,
			Flags:  world.BlockFlag(r.Flags),
			Level:  r.Level,
			Rarity: r.Rarity,
		}
	}

	slog.Info("world loaded", "seed", m.Seed, "size", m.Size, "places", len(m.Places))
	return m, nil
}
