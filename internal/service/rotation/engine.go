package rotation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/showcase/backend/internal/model/testimonial"
)

// VisibleSlots is the number of cards rendered at once.
const VisibleSlots = 3

const (
	DefaultInterval     = 5 * time.Second
	DefaultFadeDuration = 500 * time.Millisecond
	DefaultMaxQueued    = 1
)

var (
	ErrPoolTooSmall  = errors.New("content pool smaller than visible slots")
	ErrDuplicateName = errors.New("duplicate testimonial name in content pool")
)

// Direction is the trigger hint passed to Replace. It does not influence
// which slot is replaced.
type Direction string

const (
	DirectionAuto     Direction = "auto"
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// ParseDirection validates a client supplied direction.
func ParseDirection(raw string) (Direction, bool) {
	switch d := Direction(raw); d {
	case DirectionAuto, DirectionNext, DirectionPrevious:
		return d, true
	default:
		return "", false
	}
}

// Outcome reports what Replace did with a trigger.
type Outcome string

const (
	OutcomeStarted Outcome = "started"
	OutcomeQueued  Outcome = "queued"
	OutcomeDropped Outcome = "dropped"
	OutcomeIgnored Outcome = "ignored"
)

// Renderer receives logical render signals. Calls are made while the engine
// holds its lock: implementations must not block or call back into the Engine.
type Renderer interface {
	Render(slot int, item testimonial.Testimonial)
	TransitionStart(slot int)
	TransitionEnd(slot int)
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Interval     time.Duration
	FadeDuration time.Duration
	// MaxQueued bounds manual triggers deferred behind an in-flight transition.
	// Zero selects DefaultMaxQueued, a negative value disables queueing.
	MaxQueued int

	Rand *rand.Rand
	// Shuffle overrides the initial permutation of the content pool.
	Shuffle func(items []testimonial.Testimonial)
	// PickSlot overrides slot selection; it must return a value in [0, n).
	PickSlot func(n int) int

	Scheduler Scheduler
	Renderer  Renderer
	Logger    *zap.Logger
}

// State is a point-in-time copy of the engine.
type State struct {
	Visible       []testimonial.Testimonial `json:"visible"`
	Available     []testimonial.Testimonial `json:"available"`
	Transitioning int                       `json:"transitioning"`
	AutoRotating  bool                      `json:"autoRotating"`
	Rotations     int                       `json:"rotations"`
}

type transition struct {
	slot      int
	incoming  testimonial.Testimonial
	direction Direction
	timer     Timer
}

// Engine keeps three distinct testimonials on screen and swaps one of them at
// a time, either on a timer or on a manual trigger. At most one transition is
// in flight; further manual triggers queue behind it.
type Engine struct {
	content []testimonial.Testimonial

	interval  time.Duration
	fade      time.Duration
	maxQueued int
	shuffle   func([]testimonial.Testimonial)
	pickSlot  func(int) int
	sched     Scheduler
	renderer  Renderer
	logger    *zap.Logger

	mu          sync.Mutex
	initialized bool
	closed      bool
	visible     [VisibleSlots]testimonial.Testimonial
	available   []testimonial.Testimonial
	auto        bool
	rotation    Timer
	rotationGen uint64
	inFlight    *transition
	queued      []Direction
	rotations   int
}

// New builds an Engine over content. The slice is copied and never mutated.
func New(content []testimonial.Testimonial, opts Options) (*Engine, error) {
	if len(content) < VisibleSlots {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrPoolTooSmall, len(content), VisibleSlots)
	}
	seen := make(map[string]struct{}, len(content))
	for _, item := range content {
		if _, dup := seen[item.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, item.Name)
		}
		seen[item.Name] = struct{}{}
	}

	rng := opts.Rand
	if rng == nil {
		rng = NewRand(rand.Uint64())
	}

	e := &Engine{
		content:   append([]testimonial.Testimonial(nil), content...),
		interval:  opts.Interval,
		fade:      opts.FadeDuration,
		maxQueued: opts.MaxQueued,
		shuffle:   opts.Shuffle,
		pickSlot:  opts.PickSlot,
		sched:     opts.Scheduler,
		renderer:  opts.Renderer,
		logger:    opts.Logger,
	}
	if e.interval <= 0 {
		e.interval = DefaultInterval
	}
	if e.fade <= 0 {
		e.fade = DefaultFadeDuration
	}
	if e.maxQueued < 0 {
		e.maxQueued = 0
	} else if opts.MaxQueued == 0 {
		e.maxQueued = DefaultMaxQueued
	}
	if e.shuffle == nil {
		e.shuffle = func(items []testimonial.Testimonial) { shuffle(rng, items) }
	}
	if e.pickSlot == nil {
		e.pickSlot = rng.IntN
	}
	if e.sched == nil {
		e.sched = SystemScheduler{}
	}
	if e.renderer == nil {
		e.renderer = nopRenderer{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e, nil
}

// Initialize fills the visible slots from a shuffled copy of the content pool
// and queues the remainder. Only the first call has an effect.
func (e *Engine) Initialize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized || e.closed {
		return
	}

	order := append([]testimonial.Testimonial(nil), e.content...)
	e.shuffle(order)

	copy(e.visible[:], order[:VisibleSlots])
	e.available = append(make([]testimonial.Testimonial, 0, len(order)), order[VisibleSlots:]...)
	e.initialized = true

	for slot, item := range e.visible {
		e.renderer.Render(slot, item)
	}
	e.logger.Info("testimonial carousel initialized",
		zap.Int("pool", len(e.content)),
		zap.Int("available", len(e.available)))
}

// Replace swaps one visible testimonial for the next available one.
func (e *Engine) Replace(direction Direction) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized || e.closed {
		return OutcomeIgnored
	}

	if e.inFlight != nil {
		if direction == DirectionAuto {
			// The commit restarts the timer; a stale tick is not worth queueing.
			return OutcomeDropped
		}
		if len(e.queued) >= e.maxQueued {
			e.logger.Debug("rotation trigger dropped",
				zap.String("direction", string(direction)),
				zap.Int("queued", len(e.queued)))
			return OutcomeDropped
		}
		e.queued = append(e.queued, direction)
		return OutcomeQueued
	}

	if !e.beginLocked(direction) {
		return OutcomeIgnored
	}
	return OutcomeStarted
}

// StartAutoRotation schedules Replace(DirectionAuto) every interval,
// replacing any existing schedule.
func (e *Engine) StartAutoRotation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.auto = true
	e.stopRotationLocked()
	if e.inFlight == nil {
		e.scheduleRotationLocked()
	}
}

// StopAutoRotation cancels the auto-rotation schedule, if any.
func (e *Engine) StopAutoRotation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.auto = false
	e.stopRotationLocked()
}

// Close stops auto rotation and cancels a pending transition. The incoming
// testimonial goes back to the front of the queue. Later calls are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.auto = false
	e.stopRotationLocked()
	e.queued = nil

	if tr := e.inFlight; tr != nil {
		tr.timer.Stop()
		e.inFlight = nil
		e.available = append([]testimonial.Testimonial{tr.incoming}, e.available...)
		e.renderer.TransitionEnd(tr.slot)
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := State{
		Available:     append([]testimonial.Testimonial{}, e.available...),
		Transitioning: -1,
		AutoRotating:  e.auto,
		Rotations:     e.rotations,
	}
	if e.initialized {
		state.Visible = append([]testimonial.Testimonial{}, e.visible[:]...)
	} else {
		state.Visible = []testimonial.Testimonial{}
	}
	if e.inFlight != nil {
		state.Transitioning = e.inFlight.slot
	}
	return state
}

// beginLocked starts a transition. It reports false when there is nothing to swap in.
func (e *Engine) beginLocked(direction Direction) bool {
	e.stopRotationLocked()

	slot := e.pickSlot(VisibleSlots)
	if slot < 0 || slot >= VisibleSlots {
		slot = 0
	}

	if len(e.available) == 0 {
		e.rebuildAvailableLocked()
	}
	if len(e.available) == 0 {
		// Every testimonial is already on screen.
		e.resumeLocked()
		return false
	}

	incoming := e.available[0]
	e.available = e.available[1:]

	tr := &transition{slot: slot, incoming: incoming, direction: direction}
	e.inFlight = tr
	e.renderer.TransitionStart(slot)
	tr.timer = e.sched.AfterFunc(e.fade, func() { e.commit(tr) })
	return true
}

func (e *Engine) commit(tr *transition) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight != tr {
		return
	}
	e.inFlight = nil

	if e.isVisibleLocked(tr.incoming.Name) {
		e.logger.Warn("incoming testimonial already visible, skipping swap",
			zap.String("name", tr.incoming.Name),
			zap.Int("slot", tr.slot))
		e.available = append(e.available, tr.incoming)
		e.renderer.TransitionEnd(tr.slot)
		e.resumeLocked()
		return
	}

	outgoing := e.visible[tr.slot]
	e.available = append(e.available, outgoing)
	e.visible[tr.slot] = tr.incoming
	e.rotations++

	e.renderer.Render(tr.slot, tr.incoming)
	e.renderer.TransitionEnd(tr.slot)

	e.logger.Debug("testimonial rotated",
		zap.String("direction", string(tr.direction)),
		zap.Int("slot", tr.slot),
		zap.String("out", outgoing.Name),
		zap.String("in", tr.incoming.Name))

	e.resumeLocked()
}

// resumeLocked runs the next queued trigger, or restarts the auto timer.
func (e *Engine) resumeLocked() {
	if len(e.queued) > 0 {
		next := e.queued[0]
		e.queued = e.queued[1:]
		e.beginLocked(next)
		return
	}
	if e.auto {
		e.scheduleRotationLocked()
	}
}

// rebuildAvailableLocked refills the queue with every testimonial not on
// screen, in content pool order.
func (e *Engine) rebuildAvailableLocked() {
	e.available = e.available[:0]
	for _, item := range e.content {
		if !e.isVisibleLocked(item.Name) {
			e.available = append(e.available, item)
		}
	}
	e.logger.Debug("available pool rebuilt", zap.Int("size", len(e.available)))
}

func (e *Engine) isVisibleLocked(name string) bool {
	for _, item := range e.visible {
		if item.Name == name {
			return true
		}
	}
	return false
}

func (e *Engine) scheduleRotationLocked() {
	e.rotationGen++
	gen := e.rotationGen
	e.rotation = e.sched.AfterFunc(e.interval, func() { e.tick(gen) })
}

func (e *Engine) stopRotationLocked() {
	e.rotationGen++
	if e.rotation != nil {
		e.rotation.Stop()
		e.rotation = nil
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.rotationGen || !e.auto || e.closed || !e.initialized {
		return
	}
	e.rotation = nil
	if e.inFlight != nil {
		return
	}
	e.beginLocked(DirectionAuto)
}

type nopRenderer struct{}

func (nopRenderer) Render(int, testimonial.Testimonial) {}
func (nopRenderer) TransitionStart(int)                 {}
func (nopRenderer) TransitionEnd(int)                   {}
