// internal/train/runner.go
//
// Runner drives a State in real time.
// Responsibilities:
//   - One goroutine owns both tickers (spawn + frame), so ticks never overlap.
//   - Each run is bound to a cancellable context; Pause/Stop cancel it,
//     Resume/Reset start a new one.
//   - Lifecycle calls are serialized, so the paused flag and the loop never
//     disagree.
//   - The spawn ticker follows the spawn interval as levels tighten it.
//   - Game over ends the loop and fires OnGameOver once per game.

package train

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultFramePeriod approximates a 60Hz display refresh.
const DefaultFramePeriod = 16 * time.Millisecond

// Runner schedules spawner and motion ticks for one game.
type Runner struct {
	ID    string
	state *State
	rng   *rand.Rand
	frame time.Duration

	// OnGameOver is called from the loop goroutine with the final snapshot.
	OnGameOver func(Snapshot)

	// life serializes Start/Stop/Pause/Resume/Reset. mu guards the fields
	// below and is never held while waiting for the loop to exit.
	life     sync.Mutex
	mu       sync.Mutex
	parent   context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	reported bool

	rearmed func(time.Duration) // called after the spawn ticker is reset
}

// NewRunner wraps state. A nil rng gets a time-seeded PCG source; a
// non-positive frame uses DefaultFramePeriod.
func NewRunner(id string, state *State, rng *rand.Rand, frame time.Duration) *Runner {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if frame <= 0 {
		frame = DefaultFramePeriod
	}
	closed := make(chan struct{})
	close(closed)
	return &Runner{ID: id, state: state, rng: rng, frame: frame, done: closed}
}

// State returns the driven store.
func (r *Runner) State() *State { return r.state }

// Start launches the loop if it is not already running and the game is
// active. ctx bounds every later Resume/Reset as well.
func (r *Runner) Start(ctx context.Context) {
	r.life.Lock()
	defer r.life.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parent = ctx
	r.startLocked()
}

func (r *Runner) startLocked() {
	if r.cancel != nil || r.parent == nil || r.parent.Err() != nil {
		return
	}
	if !r.state.Active() {
		return
	}
	ctx, cancel := context.WithCancel(r.parent)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go r.loop(ctx, done)
}

// Running reports whether the loop goroutine is live.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Done returns a channel closed when the current loop exits.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stop cancels the loop and waits for it to exit.
func (r *Runner) Stop() {
	r.life.Lock()
	defer r.life.Unlock()
	r.stop()
}

func (r *Runner) stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Pause freezes the game and cancels both tickers.
func (r *Runner) Pause() {
	r.life.Lock()
	defer r.life.Unlock()
	r.state.SetPaused(true)
	r.stop()
}

// Resume unfreezes the game and restarts the tickers.
func (r *Runner) Resume() {
	r.life.Lock()
	defer r.life.Unlock()
	r.state.SetPaused(false)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startLocked()
}

// Reset stops the loop, restores the initial game and starts again.
func (r *Runner) Reset() {
	r.life.Lock()
	defer r.life.Unlock()
	r.stop()
	r.state.Reset()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = false
	r.startLocked()
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		if r.done == done {
			r.cancel = nil
		}
		r.mu.Unlock()
		close(done)
	}()

	interval := r.state.SpawnInterval()
	spawn := time.NewTicker(interval)
	defer spawn.Stop()
	frame := time.NewTicker(r.frame)
	defer frame.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-spawn.C:
			if t, ok := r.state.Spawn(r.rng); ok {
				log.Debug().Str("gameId", r.ID).Str("train", t.ID).Str("target", t.TargetStation).Msg("train spawned")
			}
		case <-frame.C:
			rep := r.state.Step()
			if rep.LevelUps > 0 {
				if iv := r.state.SpawnInterval(); iv != interval {
					interval = iv
					spawn.Reset(iv)
					if r.rearmed != nil {
						r.rearmed(iv)
					}
				}
				log.Info().Str("gameId", r.ID).Dur("spawnInterval", interval).Msg("level up")
			}
			if r.state.GameOver() {
				r.finish()
				return
			}
		}
	}
}

func (r *Runner) finish() {
	r.mu.Lock()
	if r.reported {
		r.mu.Unlock()
		return
	}
	r.reported = true
	cb := r.OnGameOver
	r.mu.Unlock()

	snap := r.state.Snapshot()
	log.Info().Str("gameId", r.ID).Int("score", snap.Score).Int("level", snap.Level).Msg("game over")
	if cb != nil {
		cb(snap)
	}
}
