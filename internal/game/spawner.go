package game

import "math/rand"

// Spawner tuning
const (
	spawnerInset = 8.0
	// Brute odds ramp from bruteBaseWeight to bruteBaseWeight+bruteRampWeight over bruteRampMs
	bruteBaseWeight = 0.15
	bruteRampWeight = 0.5
	bruteRampMs     = 60000
)

// SpawnPoint is a fixed enemy entry position
type SpawnPoint struct {
	X, Y float64
}

// Spawner emits one enemy per interval from a random corner. The RNG is
// seeded so a run can be replayed from its seed.
type Spawner struct {
	intervalMs int64
	next       int64
	started    bool
	points     []SpawnPoint
	rng        *rand.Rand
}

// NewSpawner creates a spawner with the four inset corners of a width x height arena.
func NewSpawner(intervalMs int, seed int64, width, height float64) *Spawner {
	return &Spawner{
		intervalMs: int64(intervalMs),
		points: []SpawnPoint{
			{spawnerInset, spawnerInset},
			{width - spawnerInset, spawnerInset},
			{spawnerInset, height - spawnerInset},
			{width - spawnerInset, height - spawnerInset},
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

// BruteWeight is the probability that a spawn is a brute after elapsedMs.
func BruteWeight(elapsedMs int64) float64 {
	t := float64(elapsedMs) / bruteRampMs
	if t > 1 {
		t = 1
	}
	if t < 0 {
		t = 0
	}
	return bruteBaseWeight + bruteRampWeight*t
}

// Next reports whether a spawn is due at now and, if so, what and where.
func (s *Spawner) Next(now, elapsedMs int64) (EnemyKind, float64, float64, bool) {
	if !s.started {
		s.started = true
		s.next = now + s.intervalMs
		return 0, 0, 0, false
	}
	if now < s.next || len(s.points) == 0 {
		return 0, 0, 0, false
	}
	s.next = advanceLadder(s.next, now, int(s.intervalMs))

	pt := s.points[s.rng.Intn(len(s.points))]
	kind := EnemyGrunt
	if s.rng.Float64() < BruteWeight(elapsedMs) {
		kind = EnemyBrute
	}
	return kind, pt.X, pt.Y, true
}
