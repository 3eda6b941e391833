package game

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventMatchStarted
	EventMoveExecuted
	EventMoveRejected
	EventInsufficientMana
	EventSpellDetonated
	EventEnemySpawned
	EventEnemyKilled
	EventHeroDamaged
	EventHeroDowned
	EventSupportResolved
	EventBuffApplied
)

// EventVersion for backwards compatibility of the event file
const EventVersion uint8 = 2

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version" msgpack:"version"`
	Type      EventType `json:"type" msgpack:"type"`
	Timestamp int64     `json:"timestamp" msgpack:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence" msgpack:"sequence"`   // Monotonic sequence
	MatchID   string    `json:"matchId" msgpack:"matchId"`
	Clock     int64     `json:"clock" msgpack:"clock"`     // World ms clock
	ActorID   string    `json:"actorId" msgpack:"actorId"` // Source actor (for rate limiting)
	Payload   []byte    `json:"payload" msgpack:"payload"` // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventMatchStarted:
		return "match_started"
	case EventMoveExecuted:
		return "move_executed"
	case EventMoveRejected:
		return "move_rejected"
	case EventInsufficientMana:
		return "insufficient_mana"
	case EventSpellDetonated:
		return "spell_detonated"
	case EventEnemySpawned:
		return "enemy_spawned"
	case EventEnemyKilled:
		return "enemy_killed"
	case EventHeroDamaged:
		return "hero_damaged"
	case EventHeroDowned:
		return "hero_downed"
	case EventSupportResolved:
		return "support_resolved"
	case EventBuffApplied:
		return "buff_applied"
	default:
		return "unknown"
	}
}

// MarshalText lets event types appear by name in JSON maps
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText maps a name back to its event type. Unknown names decode to EventTypeUnknown.
func (t *EventType) UnmarshalText(b []byte) error {
	name := string(b)
	for et := EventMatchStarted; et <= EventBuffApplied; et++ {
		if et.String() == name {
			*t = et
			return nil
		}
	}
	*t = EventTypeUnknown
	return nil
}

// Typed payloads for different event types

// MatchStartedPayload is emitted once when a world is created
type MatchStartedPayload struct {
	Heroes int   `json:"heroes"`
	Seed   int64 `json:"seed"`
}

// MovePayload describes an executed move
type MovePayload struct {
	Button     string `json:"button"`
	Family     string `json:"family"`
	Traits     [4]int `json:"traits"`
	ManaCost   int    `json:"manaCost"`
	Damage     int    `json:"damage"`
	DurationMs int    `json:"durationMs"`
}

// MoveRejectedPayload describes a move that failed validation
type MoveRejectedPayload struct {
	Button string `json:"button"`
	Reason string `json:"reason"`
}

// InsufficientManaPayload is emitted when a hero cannot pay for a move
type InsufficientManaPayload struct {
	Button string `json:"button"`
	Cost   int    `json:"cost"`
	Mana   int    `json:"mana"`
}

// SpellDetonatedPayload contains detonation details
type SpellDetonatedPayload struct {
	ProjectileID uint64  `json:"projectileId"`
	Heal         bool    `json:"heal"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Radius       int     `json:"radius"`
}

// EnemyPayload identifies an enemy for spawn and kill events
type EnemyPayload struct {
	Index uint32  `json:"index"`
	Gen   uint32  `json:"gen"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// HeroDamagedPayload contains contact damage details
type HeroDamagedPayload struct {
	EnemyIndex uint32 `json:"enemyIndex"`
	Damage     int    `json:"damage"`
	HP         int    `json:"hp"`
}

// SupportResolvedPayload reports a support puzzle outcome
type SupportResolvedPayload struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Power   int    `json:"power,omitempty"`
	Targets int    `json:"targets,omitempty"`
}

// BuffAppliedPayload reports a buff landing on a hero
type BuffAppliedPayload struct {
	Kind       string `json:"kind"`
	Power      int    `json:"power"`
	DurationMs int    `json:"durationMs"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, matchID string, clock int64, actorID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		MatchID:   matchID,
		Clock:     clock,
		ActorID:   actorID,
		Payload:   EncodePayload(payload),
	}
}

// HeroActorID is the rate-limit key for events caused by a hero
func HeroActorID(id HeroID) string {
	return "hero-" + strconv.Itoa(int(id))
}

// EventSink receives world events. EventLog is the production sink.
type EventSink interface {
	Emit(event Event) bool
}

// EventRecorder is an unbounded in-memory sink, used by tests and tools.
type EventRecorder struct {
	Events []Event
}

// Emit implements EventSink
func (r *EventRecorder) Emit(event Event) bool {
	r.Events = append(r.Events, event)
	return true
}

// Count returns the number of recorded events of a type
func (r *EventRecorder) Count(t EventType) int {
	n := 0
	for _, e := range r.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}
