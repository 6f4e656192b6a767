// Command wildsim builds a wilderness from a seed, stores it, serves
// the observation API, and sends a traveler on a scripted walk through
// the streaming runtime.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/reedmace/wildgen/internal/api"
	"github.com/reedmace/wildgen/internal/engine"
	"github.com/reedmace/wildgen/internal/entropy"
	"github.com/reedmace/wildgen/internal/monster"
	"github.com/reedmace/wildgen/internal/persistence"
	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/town"
	"github.com/reedmace/wildgen/internal/world"
)

// Play-time entropy streams, distinct from every generation pass.
const (
	spawnStream = 100
	walkStream  = 101
)

func main() {
	var (
		seed      = flag.Int64("seed", 0, "world seed (0 picks a random seed)")
		size      = flag.Int("size", 0, "map size in blocks (0 uses the default)")
		dbPath    = flag.String("db", "data/wild.db", "sqlite world store path")
		typesPath = flag.String("types", "", "generation type table yaml (empty uses the built-in table)")
		snapPath  = flag.String("snapshot", "", "write a compressed snapshot here once the world is ready")
		apiPort   = flag.Int("port", 8080, "observation api port")
		steps     = flag.Int("steps", 600, "demo walk length in tiles")
		regen     = flag.Bool("regen", false, "regenerate even when the store already holds a world")
		serve     = flag.Bool("serve", false, "keep serving the api after the walk")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// ── Generation type table ─────────────────────────────────────────
	table := world.DefaultTypeTable()
	if *typesPath != "" {
		loaded, err := world.LoadTypeTable(*typesPath)
		if err != nil {
			slog.Error("failed to load type table", "path", *typesPath, "error", err)
			os.Exit(1)
		}
		table = loaded
		slog.Info("type table loaded", "path", *typesPath, "types", table.Len())
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// ── World: load or generate ───────────────────────────────────────
	has, err := db.HasWorld()
	if err != nil {
		slog.Error("failed to check for a saved world", "error", err)
		os.Exit(1)
	}

	var m *world.Map
	if has && !*regen {
		m, err = db.LoadWorld()
		if err != nil {
			slog.Error("failed to load world", "error", err)
			os.Exit(1)
		}
		if *seed != 0 && *seed != m.Seed {
			slog.Warn("ignoring -seed, the store already holds a world",
				"stored_seed", m.Seed, "requested", *seed)
		}
	} else {
		cfg := world.DefaultGenConfig()
		cfg.Seed = *seed
		if cfg.Seed == 0 {
			cfg.Seed = entropy.SystemSeed()
			slog.Info("picked random seed", "seed", cfg.Seed)
		}
		if *size > 0 {
			cfg.Size = *size
		}
		m = world.Generate(cfg, table)
		if err := db.SaveWorld(m); err != nil {
			slog.Error("failed to save world", "error", err)
			os.Exit(1)
		}
	}

	// ── Snapshot export ───────────────────────────────────────────────
	if *snapPath != "" {
		if err := persistence.WriteSnapshot(*snapPath, m); err != nil {
			slog.Error("snapshot failed", "error", err)
		} else {
			slog.Info("snapshot written", "path", *snapPath)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	api.NewServer(m, table, *apiPort).Start()

	// ── Demo walk ─────────────────────────────────────────────────────
	rt := engine.NewRuntime(m,
		world.NewRenderer(table, m.Seed),
		town.NewGenerator(),
		monster.NewSpawner(entropy.PassSeed(m.Seed, spawnStream)),
		engine.DefaultConfig(),
	)
	walk(rt, m, *steps)

	st := rt.Stats()
	towns := len(m.Towns())
	fmt.Printf("\nWilderness ready: %s blocks, %d places (%d towns) from seed %d.\n",
		humanize.Comma(int64(len(m.Blocks))), len(m.Places), towns, m.Seed)
	fmt.Printf("Walked %s steps: %s tiles rendered over %d block loads, %d evictions, %s monsters about.\n",
		humanize.Comma(int64(*steps)),
		humanize.Comma(int64(st.Loads*terrain.BlockSize*terrain.BlockSize)),
		st.Loads, st.Evictions,
		humanize.Comma(int64(rt.Spawner.Roster().Len())))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)

	if *serve {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		fmt.Println("Serving... (Ctrl+C to stop)")
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
	}
}

// walk drifts the traveler outward from the starting town, streaming
// terrain block by block. The route is a pure function of the world
// seed, so two runs over the same store print the same journey.
func walk(rt *engine.Runtime, m *world.Map, steps int) {
	start := m.PlaceByKey(world.StartingTownKey)
	if start == nil {
		slog.Warn("no starting town, skipping the walk")
		return
	}
	cx, cy := start.CenterBlock()
	x := cx*terrain.BlockSize + terrain.BlockSize/2
	y := cy*terrain.BlockSize + terrain.BlockSize/2
	rt.MoveTo(x, y)

	rng := rand.New(rand.NewSource(entropy.PassSeed(m.Seed, walkStream)))
	dx, dy := 1, 0
	for i := 1; i <= steps; i++ {
		if rng.Intn(6) == 0 {
			dx, dy = rng.Intn(3)-1, rng.Intn(3)-1
		}
		nx, ny := x+dx, y+dy
		tile, ok := rt.Tile(nx, ny)
		if !ok || !tile.Feature.Passable() {
			dx, dy = rng.Intn(3)-1, rng.Intn(3)-1
			continue
		}
		x, y = nx, ny
		rt.MoveTo(x, y)

		if i%200 == 0 {
			here, _ := rt.Tile(x, y)
			slog.Info("traveler",
				"step", i, "x", x, "y", y,
				"feature", here.Feature.Name(),
				"actors", rt.Spawner.Roster().Len(),
			)
		}
	}

	st := rt.Stats()
	slog.Info("walk complete",
		"shifts", st.Shifts,
		"loads", st.Loads,
		"evictions", st.Evictions,
		"spawns", st.Spawns,
	)
}
