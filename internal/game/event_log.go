package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize     = 1024                   // Circular buffer size
	RecentEventsSize    = 128                    // Events kept for the API feed
	MaxEventsPerSec     = 10000                  // Global rate limit
	MaxEventsPerActor   = 200                    // Per-actor rate limit per second
	BatchFlushSize      = 64                     // Events per batch write
	BatchFlushInterval  = 100 * time.Millisecond // How often to flush
	ActorLimiterCleanup = 5 * time.Minute        // Cleanup interval for actor limiters
)

// EventLog provides bounded, rate-limited event logging with backpressure.
// Emit is called from the tick goroutine only; the writer drains asynchronously.
type EventLog struct {
	// Circular buffer (SPSC)
	buffer    [EventBufferSize]Event
	writeHead uint64 // atomic - producer position
	readHead  uint64 // atomic - consumer position

	// Rate limiting so a stuck input loop cannot flood the file
	globalLimiter *rate.Limiter
	actorLimiters sync.Map // map[string]*actorLimiterEntry

	// Tail kept for readers
	recentMu   sync.Mutex
	recent     [RecentEventsSize]Event
	recentNext uint64

	// Async writer
	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// File output
	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

type actorLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

// NewEventLog creates a new bounded event log
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer goroutine. An empty path keeps events in memory only.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}

	el.filePath = filePath
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()

	return nil
}

// Stop gracefully shuts down the event log
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit adds an event with rate limiting.
// Returns false if rate limited or the log is not running.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}

	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}

	if event.ActorID != "" {
		if !el.actorLimiter(event.ActorID).Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			return false
		}
	}

	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)

	// Full: drop the oldest pending event
	if head-tail >= EventBufferSize {
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
	}

	event.Sequence = head
	el.buffer[head%EventBufferSize] = event

	el.recentMu.Lock()
	el.recent[el.recentNext%RecentEventsSize] = event
	el.recentNext++
	el.recentMu.Unlock()

	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// Recent returns up to limit of the newest events, oldest first.
func (el *EventLog) Recent(limit int) []Event {
	el.recentMu.Lock()
	defer el.recentMu.Unlock()

	n := int(min(el.recentNext, RecentEventsSize))
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := el.recentNext - uint64(limit); i < el.recentNext; i++ {
		out = append(out, el.recent[i%RecentEventsSize])
	}
	return out
}

func (el *EventLog) actorLimiter(actorID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.actorLimiters.Load(actorID); ok {
		e := v.(*actorLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}

	entry := &actorLimiterEntry{
		limiter: rate.NewLimiter(MaxEventsPerActor, MaxEventsPerActor/10),
	}
	entry.lastUsed.Store(now)
	actual, _ := el.actorLimiters.LoadOrStore(actorID, entry)
	return actual.(*actorLimiterEntry).limiter
}

// writerLoop batches and writes events to disk asynchronously
func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)

	for {
		select {
		case <-el.stopChan:
			// Drain everything left
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}

		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

// cleanupLoop removes stale actor limiters
func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(ActorLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			el.cleanupActorLimiters()
		}
	}
}

func (el *EventLog) cleanupActorLimiters() {
	cutoff := time.Now().Add(-ActorLimiterCleanup).UnixNano()
	el.actorLimiters.Range(func(key, value interface{}) bool {
		if value.(*actorLimiterEntry).lastUsed.Load() < cutoff {
			el.actorLimiters.Delete(key)
		}
		return true
	})
}

// collectBatch reads available events from the circular buffer
func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	for i := tail + 1; i <= head && len(batch) < BatchFlushSize; i++ {
		batch = append(batch, el.buffer[i%EventBufferSize])
	}

	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}
	return batch
}

// flushBatch appends events as newline-delimited JSON
func (el *EventLog) flushBatch(batch []Event) {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()

	if el.file == nil {
		return
	}

	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(append(data, '\n'))
	}
}

// GetStats returns counters for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	return map[string]interface{}{
		"total":   atomic.LoadUint64(&el.totalCount),
		"dropped": atomic.LoadUint64(&el.droppedCount),
		"pending": head - tail,
		"running": el.running.Load(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 {
	return atomic.LoadUint64(&el.droppedCount)
}

// GetTotalCount returns the total number of events accepted
func (el *EventLog) GetTotalCount() uint64 {
	return atomic.LoadUint64(&el.totalCount)
}
