package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Engine runs a World on a fixed tick and makes it safe for concurrent callers.
type Engine struct {
	mu    sync.RWMutex
	world *World

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	doneChan chan struct{}

	// Monotonic clock origin; World time is milliseconds since start
	start     time.Time
	elapsed   time.Duration // clock value at the last Stop
	tickCount int64

	limits       ResourceLimits
	snapshotPool *SnapshotPool
	eventLog     *EventLog

	// onTick is called after every tick, outside the lock
	onTick func(d time.Duration, stats WorldStats)
}

// NewEngine creates an engine around a fresh world. A nil strategy uses the default loadouts.
func NewEngine(tickRate int, cfg WorldConfig, strategy Strategy) *Engine {
	if tickRate <= 0 {
		tickRate = 60
	}
	if cfg.Limits.MaxEnemies <= 0 {
		cfg.Limits = DefaultLimits
	}

	eventLog := NewEventLog()
	return &Engine{
		world:        NewWorld(cfg, strategy, eventLog),
		tickRate:     tickRate,
		start:        time.Now(),
		limits:       cfg.Limits,
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     eventLog,
	}
}

// Start begins the game loop. A stopped engine can be started again; its
// clock resumes where Stop left it.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.start = time.Now().Add(-e.elapsed)
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.stopChan = make(chan struct{})
	e.doneChan = make(chan struct{})
	ticker, stop, done := e.ticker, e.stopChan, e.doneChan
	e.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Combat engine started at %d TPS (match %s)", e.tickRate, e.world.MatchID)
}

// Stop stops the game loop and waits for the current tick to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.ticker.Stop()
	e.elapsed = time.Since(e.start)
	close(e.stopChan)
	done := e.doneChan
	e.mu.Unlock()

	<-done
	log.Println("🛑 Combat engine stopped")
}

// Run starts the engine and blocks until ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	e.Start()
	<-ctx.Done()
	e.Stop()
	return nil
}

// clock returns milliseconds since Start from the monotonic clock
func (e *Engine) clock() int64 {
	return time.Since(e.start).Milliseconds()
}

// tick reads the clock once and advances the world to it
func (e *Engine) tick() {
	started := time.Now()

	e.mu.Lock()
	e.tickCount++
	e.world.Step(e.clock())
	e.produceSnapshot()
	stats := e.world.Stats()
	hook := e.onTick
	e.mu.Unlock()

	if hook != nil {
		hook(time.Since(started), stats)
	}
}

// StepTo advances the world to an explicit clock value. Used by tools and
// tests that drive time themselves; do not mix with Start.
func (e *Engine) StepTo(now int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCount++
	e.world.Step(now)
	e.produceSnapshot()
}

func (e *Engine) produceSnapshot() {
	snap := e.snapshotPool.AcquireWrite()
	e.world.FillSnapshot(snap, e.limits)
	e.snapshotPool.PublishWrite()
}

// GetSnapshot returns a copy of the latest published snapshot
func (e *Engine) GetSnapshot() *GameSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// SetTickHook installs a callback run after each tick
func (e *Engine) SetTickHook(fn func(d time.Duration, stats WorldStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// SetObserver installs a combat metrics observer on the world
func (e *Engine) SetObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.world.SetObserver(o)
}

// MatchID returns the world's match identifier
func (e *Engine) MatchID() string {
	return e.world.MatchID
}

// AddHero places a hero in the world
func (e *Engine) AddHero(x, y float64) (HeroID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.AddHero(x, y)
}

// SpawnEnemy places an enemy in the world
func (e *Engine) SpawnEnemy(kind EnemyKind, x, y float64) (EnemyID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.SpawnEnemy(kind, x, y)
}

// SetIntent latches a move button for the next tick
func (e *Engine) SetIntent(hero HeroID, button Button) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.SetIntent(hero, button)
}

// SetDirections latches held directions for the next tick
func (e *Engine) SetDirections(hero HeroID, dirs uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.SetDirections(hero, dirs)
}

// ExecuteMove performs a move immediately at the last tick's clock
func (e *Engine) ExecuteMove(hero HeroID, button Button) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.ExecuteMove(hero, button)
}

// ResolveSupportPuzzle reports a support puzzle outcome
func (e *Engine) ResolveSupportPuzzle(hero HeroID, success bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.ResolveSupportPuzzle(hero, success)
}

// ApplySupportBuff grants a buff directly
func (e *Engine) ApplySupportBuff(hero HeroID, kind BuffKind, power, durationMs int) error {
	if kind < BuffHaste || kind > BuffShield {
		return fmt.Errorf("buff kind %d: %w", kind, ErrInvalidMoveDescriptor)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.ApplySupportBuff(hero, kind, power, durationMs)
}

// HeroMirror returns a hero's mirrored status fields
func (e *Engine) HeroMirror(hero HeroID) (HeroMirror, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world.HeroMirror(hero)
}

// Scoreboard returns up to n ranked hero totals (n <= 0 returns all)
func (e *Engine) Scoreboard(n int) []ScoreEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world.Scoreboard(n)
}

// Stats returns world counters
func (e *Engine) Stats() WorldStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world.Stats()
}

// StartEventLog starts writing events to filePath (empty keeps them in memory)
func (e *Engine) StartEventLog(filePath string) error {
	if err := e.eventLog.Start(filePath); err != nil {
		return fmt.Errorf("event log %q: %w", filePath, err)
	}
	if filePath != "" {
		log.Printf("📝 Event log writing to %s", filePath)
	}
	return nil
}

// StopEventLog flushes and closes the event log
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log counters
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// RecentEvents returns up to limit of the newest events
func (e *Engine) RecentEvents(limit int) []Event {
	return e.eventLog.Recent(limit)
}

// GetLimits returns the resource limits
func (e *Engine) GetLimits() ResourceLimits {
	return e.limits
}
