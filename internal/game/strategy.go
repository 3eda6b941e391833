package game

import "sync"

// Strategy is the external move logic hook, injected once at world construction.
// Calls are made synchronously from inside Step with the world lock held, so
// implementations must not call back into the Engine.
type Strategy interface {
	// DecideMove returns the raw move descriptor
	// [family, t1, t2, t3, t4, element, animId] for a pressed button.
	DecideMove(button Button, hero HeroID, enemies []EnemyView, heroes []HeroView) []int
	// Animate is told which animation to play for a move
	Animate(hero HeroID, anim AnimKey, durationMs int, facing string)
	// BeginSupportPuzzle starts the (external) support minigame; the outcome
	// comes back through World.ResolveSupportPuzzle.
	BeginSupportPuzzle(hero HeroID, seqLen int)
}

// LoadoutStrategy maps (hero slot, button) to a configured descriptor.
// Heroes without a loadout fall back to Default.
type LoadoutStrategy struct {
	mu       sync.RWMutex
	loadouts map[HeroID]map[Button][]int
	Default  map[Button][]int

	// Optional observers
	OnAnimate func(hero HeroID, anim AnimKey, durationMs int, facing string)
	OnPuzzle  func(hero HeroID, seqLen int)
}

// DefaultLoadout gives every button a move from a different family.
func DefaultLoadout() map[Button][]int {
	return map[Button][]int{
		ButtonA:  MoveDescriptor{Family: FamilyStrength, Traits: Traits{10, 10, 60, 10}, AnimID: 1}.Encode(),
		ButtonB:  MoveDescriptor{Family: FamilyAgility, Traits: Traits{10, 20, 10, 10}, AnimID: 2}.Encode(),
		ButtonAB: MoveDescriptor{Family: FamilyIntellect, Traits: Traits{10, 10, 0, 10}, Element: ElementElectric, AnimID: 3}.Encode(),
	}
}

// NewLoadoutStrategy creates a strategy using DefaultLoadout for unknown heroes.
func NewLoadoutStrategy() *LoadoutStrategy {
	return &LoadoutStrategy{
		loadouts: make(map[HeroID]map[Button][]int),
		Default:  DefaultLoadout(),
	}
}

// SetLoadout replaces one hero's button map
func (s *LoadoutStrategy) SetLoadout(hero HeroID, moves map[Button][]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[Button][]int, len(moves))
	for b, d := range moves {
		copied[b] = append([]int(nil), d...)
	}
	s.loadouts[hero] = copied
}

// Loadout returns a copy of the descriptor a hero would use for a button.
func (s *LoadoutStrategy) Loadout(hero HeroID, button Button) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.loadouts[hero]; ok {
		if d, ok := m[button]; ok {
			return append([]int(nil), d...)
		}
	}
	if d, ok := s.Default[button]; ok {
		return append([]int(nil), d...)
	}
	return nil
}

// DecideMove implements Strategy
func (s *LoadoutStrategy) DecideMove(button Button, hero HeroID, _ []EnemyView, _ []HeroView) []int {
	return s.Loadout(hero, button)
}

// Animate implements Strategy
func (s *LoadoutStrategy) Animate(hero HeroID, anim AnimKey, durationMs int, facing string) {
	if s.OnAnimate != nil {
		s.OnAnimate(hero, anim, durationMs, facing)
	}
}

// BeginSupportPuzzle implements Strategy
func (s *LoadoutStrategy) BeginSupportPuzzle(hero HeroID, seqLen int) {
	if s.OnPuzzle != nil {
		s.OnPuzzle(hero, seqLen)
	}
}
