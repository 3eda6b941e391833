package game

import "sort"

// Scoreboard ranks heroes by their match totals.
//
// Score is computed as: kills*100 + damage dealt + healing done - downs*250.
// Hero counts are tiny (capped by ResourceLimits), so ranking is a sort on read.
type Scoreboard struct {
	entries []ScoreEntry // Indexed by HeroID
}

// ScoreEntry is one hero's running totals
type ScoreEntry struct {
	Hero        HeroID `json:"hero" msgpack:"hero"`
	Kills       int    `json:"kills" msgpack:"kills"`
	DamageDealt int    `json:"damageDealt" msgpack:"damageDealt"`
	HealingDone int    `json:"healingDone" msgpack:"healingDone"`
	DamageTaken int    `json:"damageTaken" msgpack:"damageTaken"`
	Downs       int    `json:"downs" msgpack:"downs"`
	Score       int    `json:"score" msgpack:"score"`
	Rank        int    `json:"rank" msgpack:"rank"`
}

// Score weights
const (
	ScorePerKill = 100
	ScorePerDown = -250
)

func (e *ScoreEntry) recompute() {
	e.Score = e.Kills*ScorePerKill + e.DamageDealt + e.HealingDone + e.Downs*ScorePerDown
}

func (s *Scoreboard) entry(id HeroID) *ScoreEntry {
	for HeroID(len(s.entries)) <= id {
		s.entries = append(s.entries, ScoreEntry{Hero: HeroID(len(s.entries))})
	}
	return &s.entries[id]
}

// Track registers a hero with zero totals
func (s *Scoreboard) Track(id HeroID) {
	if id >= 0 {
		s.entry(id)
	}
}

func (s *Scoreboard) add(id HeroID, fn func(e *ScoreEntry)) {
	if id < 0 {
		return
	}
	e := s.entry(id)
	fn(e)
	e.recompute()
}

// AddDamage credits damage dealt to enemies
func (s *Scoreboard) AddDamage(id HeroID, amount int) {
	s.add(id, func(e *ScoreEntry) { e.DamageDealt += amount })
}

// AddKill credits an enemy kill
func (s *Scoreboard) AddKill(id HeroID) {
	s.add(id, func(e *ScoreEntry) { e.Kills++ })
}

// AddHealing credits HP restored to any hero
func (s *Scoreboard) AddHealing(id HeroID, amount int) {
	s.add(id, func(e *ScoreEntry) { e.HealingDone += amount })
}

// AddDamageTaken records contact damage and whether it downed the hero
func (s *Scoreboard) AddDamageTaken(id HeroID, amount int, downed bool) {
	s.add(id, func(e *ScoreEntry) {
		e.DamageTaken += amount
		if downed {
			e.Downs++
		}
	})
}

// Get returns a hero's totals (Rank is only filled by Ranking)
func (s *Scoreboard) Get(id HeroID) (ScoreEntry, bool) {
	if id < 0 || int(id) >= len(s.entries) {
		return ScoreEntry{}, false
	}
	return s.entries[id], true
}

// Ranking returns up to n entries, best first (n <= 0 returns all).
// Ties keep hero order.
func (s *Scoreboard) Ranking(n int) []ScoreEntry {
	out := append([]ScoreEntry(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Len returns the number of tracked heroes
func (s *Scoreboard) Len() int {
	return len(s.entries)
}
