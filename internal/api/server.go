// Package api serves read-only observation endpoints over the
// generated world. Nothing here mutates the map, and the handlers
// render blocks statelessly so the play-time cache stays private to
// the runtime.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/town"
	"github.com/reedmace/wildgen/internal/world"
)

// Server serves the world over HTTP.
type Server struct {
	Map   *world.Map
	Table *world.GenTable
	Port  int

	renderer *world.Renderer
	towns    *town.Generator
}

// NewServer builds a server with its own renderer and layout cache.
func NewServer(m *world.Map, table *world.GenTable, port int) *Server {
	return &Server{
		Map:      m,
		Table:    table,
		Port:     port,
		renderer: world.NewRenderer(table, m.Seed),
		towns:    town.NewGenerator(),
	}
}

// Handler returns the route table. Split out from Start so tests can
// drive the handlers without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/places", s.handlePlaces)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/block", s.handleBlock)
	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	towns, dungeons := 0, 0
	for i := range s.Map.Places {
		switch s.Map.Places[i].Kind {
		case world.KindTown:
			towns++
		case world.KindDungeon:
			dungeons++
		}
	}

	writeJSON(w, map[string]any{
		"name":        "wildgen",
		"seed":        s.Map.Seed,
		"size_blocks": s.Map.Size,
		"tile_span":   s.Map.TileSpan(),
		"types":       s.Table.Len(),
		"places":      len(s.Map.Places),
		"towns":       towns,
		"dungeons":    dungeons,
	})
}

func (s *Server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	type placeEntry struct {
		Key         string `json:"key"`
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		X           int    `json:"x"`
		Y           int    `json:"y"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		Seed        int64  `json:"seed"`
		Population  uint32 `json:"population,omitempty"`
		MonsterKind uint8  `json:"monster_kind,omitempty"`
	}

	places := make([]placeEntry, 0, len(s.Map.Places))
	for i := range s.Map.Places {
		p := &s.Map.Places[i]
		places = append(places, placeEntry{
			Key:         p.Key,
			Name:        p.Name,
			Kind:        p.Kind.String(),
			X:           p.X,
			Y:           p.Y,
			Width:       p.Width,
			Height:      p.Height,
			Seed:        p.Seed,
			Population:  p.Population,
			MonsterKind: p.MonsterKind,
		})
	}
	writeJSON(w, places)
}

// handleMap returns the block-level overview: one entry per block with
// the generation type's map icon, overlay flags, and spawn parameters.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type blockEntry struct {
		X      int    `json:"x"`
		Y      int    `json:"y"`
		Type   uint16 `json:"type"`
		Icon   uint8  `json:"icon"`
		Flags  uint16 `json:"flags,omitempty"`
		Level  uint8  `json:"level,omitempty"`
		Rarity uint8  `json:"rarity"`
		Place  uint16 `json:"place,omitempty"`
	}

	blocks := make([]blockEntry, 0, s.Map.Size*s.Map.Size)
	for y := 0; y < s.Map.Size; y++ {
		for x := 0; x < s.Map.Size; x++ {
			b := s.Map.BlockAt(x, y)
			icon := uint8(0)
			if gt := s.Table.ByID(b.Type); gt != nil {
				icon = uint8(gt.Icon)
			}
			blocks = append(blocks, blockEntry{
				X:      x,
				Y:      y,
				Type:   b.Type,
				Icon:   icon,
				Flags:  uint16(b.Flags),
				Level:  b.Level,
				Rarity: b.Rarity,
				Place:  b.Place,
			})
		}
	}

	writeJSON(w, map[string]any{
		"size":   s.Map.Size,
		"blocks": blocks,
	})
}

// handleBlock renders one block to tiles on demand. The render is
// stateless and deterministic, so repeated requests are identical.
func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be integers", http.StatusBadRequest)
		return
	}
	if !s.Map.InBounds(x, y) {
		http.Error(w, "block out of range", http.StatusNotFound)
		return
	}

	g := s.renderer.Render(s.Map, x, y)
	b := s.Map.BlockAt(x, y)
	if b.HasPlace() {
		p := &s.Map.Places[b.Place-1]
		town.Overlay(g, s.towns.Layout(p), p, x, y)
	}

	features := make([][]int, terrain.BlockSize)
	flags := make([][]int, terrain.BlockSize)
	for ty := 0; ty < terrain.BlockSize; ty++ {
		features[ty] = make([]int, terrain.BlockSize)
		flags[ty] = make([]int, terrain.BlockSize)
		for tx := 0; tx < terrain.BlockSize; tx++ {
			t := g.At(tx, ty)
			features[ty][tx] = int(t.Feature)
			flags[ty][tx] = int(t.Flags)
		}
	}

	typeName := ""
	if gt := s.Table.ByID(b.Type); gt != nil {
		typeName = gt.Name
	}

	writeJSON(w, map[string]any{
		"x":         x,
		"y":         y,
		"type":      b.Type,
		"type_name": typeName,
		"features":  features,
		"flags":     flags,
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
