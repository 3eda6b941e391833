package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"
	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/vmihailenco/msgpack/v5"
)

// Request bodies are small; anything larger is a client bug or abuse
const maxBodyBytes = 4 << 10

// Handler methods for routerHandlers

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

// handleGetSnapshot serves the latest snapshot as msgpack when asked
// (?format=msgpack or Accept: application/msgpack), JSON otherwise.
func (h *routerHandlers) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	if !wantsMsgpack(r) {
		writeJSON(w, snap)
		return
	}

	data, err := msgpack.Marshal(snap)
	if err != nil {
		log.Printf("⚠️ Snapshot encode failed: %v", err)
		writeError(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.Write(data)
}

func wantsMsgpack(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return f == "msgpack"
	}
	return strings.Contains(r.Header.Get("Accept"), "application/msgpack")
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()
	eventStats := h.engine.GetEventLogStats()
	writeJSON(w, map[string]interface{}{
		"matchId":  h.engine.MatchID(),
		"world":    stats,
		"eventLog": eventStats,
	})
}

func (h *routerHandlers) handleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.engine.Scoreboard(limit))
}

// eventView exposes the JSON payload inline instead of base64
type eventView struct {
	Type     string          `json:"type"`
	Sequence uint64          `json:"sequence"`
	Clock    int64           `json:"clock"`
	ActorID  string          `json:"actorId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	events := h.engine.RecentEvents(limit)
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		v := eventView{
			Type:     e.Type.String(),
			Sequence: e.Sequence,
			Clock:    e.Clock,
			ActorID:  e.ActorID,
		}
		if len(e.Payload) > 0 && string(e.Payload) != "null" {
			v.Payload = json.RawMessage(e.Payload)
		}
		out = append(out, v)
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleDebugFrame(w http.ResponseWriter, r *http.Request) {
	renderer := h.renderer
	if s := r.URL.Query().Get("scale"); s != "" {
		scale, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, "scale must be an integer", http.StatusBadRequest)
			return
		}
		cp := *renderer
		cp.Scale = float64(min(max(scale, 1), render.MaxScale))
		renderer = &cp
	}

	data, err := renderer.PNG(h.engine.GetSnapshot())
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (h *routerHandlers) handleAddHero(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.engine.AddHero(req.X, req.Y)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]interface{}{"id": id})
}

func (h *routerHandlers) handleHeroMirror(w http.ResponseWriter, r *http.Request) {
	id, ok := heroParam(w, r)
	if !ok {
		return
	}
	m, err := h.engine.HeroMirror(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, m)
}

func (h *routerHandlers) handleSetIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := heroParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Button string `json:"button"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	button, valid := game.ParseButton(req.Button)
	if !valid {
		writeError(w, fmt.Sprintf("unknown button %q", req.Button), http.StatusBadRequest)
		return
	}

	if err := h.engine.SetIntent(id, button); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

// directionsRequest accepts a raw bit mask or named flags
type directionsRequest struct {
	Dirs  *uint8 `json:"dirs"`
	Up    bool   `json:"up"`
	Down  bool   `json:"down"`
	Left  bool   `json:"left"`
	Right bool   `json:"right"`
}

func (d directionsRequest) mask() uint8 {
	if d.Dirs != nil {
		return *d.Dirs
	}
	var m uint8
	if d.Up {
		m |= game.DirUp
	}
	if d.Down {
		m |= game.DirDown
	}
	if d.Left {
		m |= game.DirLeft
	}
	if d.Right {
		m |= game.DirRight
	}
	return m
}

func (h *routerHandlers) handleSetDirections(w http.ResponseWriter, r *http.Request) {
	id, ok := heroParam(w, r)
	if !ok {
		return
	}
	var req directionsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.engine.SetDirections(id, req.mask()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleExecuteMove(w http.ResponseWriter, r *http.Request) {
	id, ok := heroParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Button string `json:"button"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	button, valid := game.ParseButton(req.Button)
	if !valid || button == game.ButtonNone {
		writeError(w, fmt.Sprintf("unknown button %q", req.Button), http.StatusBadRequest)
		return
	}

	if err := h.engine.ExecuteMove(id, button); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleResolveSupport(w http.ResponseWriter, r *http.Request) {
	id, ok := heroParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Success bool `json:"success"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.engine.ResolveSupportPuzzle(id, req.Success); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleApplyBuff(w http.ResponseWriter, r *http.Request) {
	id, ok := heroParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Kind       string `json:"kind"`
		Power      int    `json:"power"`
		DurationMs int    `json:"durationMs"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	kind, valid := parseBuffKind(req.Kind)
	if !valid {
		writeError(w, fmt.Sprintf("unknown buff kind %q", req.Kind), http.StatusBadRequest)
		return
	}
	if req.DurationMs <= 0 {
		writeError(w, "durationMs must be positive", http.StatusBadRequest)
		return
	}

	if err := h.engine.ApplySupportBuff(id, kind, req.Power, req.DurationMs); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func parseBuffKind(s string) (game.BuffKind, bool) {
	for _, k := range []game.BuffKind{game.BuffHaste, game.BuffDamageAmp, game.BuffShield} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

func (h *routerHandlers) handleSpawnEnemy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string  `json:"kind"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.engine.SpawnEnemy(game.ParseEnemyKind(req.Kind), req.X, req.Y)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]interface{}{"index": id.Index, "gen": id.Gen})
}

// Helper functions (package-level for reuse)

func heroParam(w http.ResponseWriter, r *http.Request) (game.HeroID, bool) {
	raw := chi.URLParam(r, "heroID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		writeError(w, fmt.Sprintf("invalid hero id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return game.HeroID(id), true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, "Request too large", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
