package rotation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/showcase/backend/internal/model/testimonial"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTask struct {
	due  time.Duration
	seq  int
	f    func()
	done bool
	s    *fakeScheduler
}

func (t *fakeTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// fakeScheduler runs tasks only when the test advances its clock.
type fakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &fakeTask{due: s.now + d, seq: s.seq, f: f, s: s}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *fakeTask
		for _, task := range s.tasks {
			if task.done || task.due > target {
				continue
			}
			if next == nil || task.due < next.due || (task.due == next.due && task.seq < next.seq) {
				next = task
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.done = true
		s.now = next.due
		s.mu.Unlock()

		next.f()
	}
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Render(slot int, item testimonial.Testimonial) {
	r.add(fmt.Sprintf("render %d %s", slot, item.Name))
}

func (r *recorder) TransitionStart(slot int) { r.add(fmt.Sprintf("start %d", slot)) }
func (r *recorder) TransitionEnd(slot int)   { r.add(fmt.Sprintf("end %d", slot)) }

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Count(prefix string) int {
	n := 0
	for _, event := range r.Events() {
		if len(event) >= len(prefix) && event[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func letters(names ...string) []testimonial.Testimonial {
	items := make([]testimonial.Testimonial, len(names))
	for i, name := range names {
		items[i] = testimonial.Testimonial{Name: name, Text: "quote " + name, Rating: 5}
	}
	return items
}

func names(items []testimonial.Testimonial) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

// orderBy returns a Shuffle func that reorders items to match want.
func orderBy(want ...string) func([]testimonial.Testimonial) {
	return func(items []testimonial.Testimonial) {
		byName := make(map[string]testimonial.Testimonial, len(items))
		for _, item := range items {
			byName[item.Name] = item
		}
		for i, name := range want {
			items[i] = byName[name]
		}
	}
}

func fixedSlot(slot int) func(int) int {
	return func(int) int { return slot }
}

func requireInvariants(t *testing.T, content []testimonial.Testimonial, state State) {
	t.Helper()

	require.Len(t, state.Visible, VisibleSlots)
	seen := make(map[string]int)
	for _, item := range state.Visible {
		seen[item.Name]++
	}
	require.Len(t, seen, VisibleSlots, "visible set must be pairwise distinct: %v", names(state.Visible))

	for _, item := range state.Available {
		_, onScreen := seen[item.Name]
		require.False(t, onScreen, "%s is both visible and available", item.Name)
		seen[item.Name]++
	}

	if state.Transitioning < 0 {
		require.Len(t, seen, len(content), "every testimonial must be visible or available")
		for name, n := range seen {
			require.Equal(t, 1, n, "%s appears %d times", name, n)
		}
	}
}

func TestNewRejectsInvalidPools(t *testing.T) {
	_, err := New(letters("A", "B"), Options{})
	require.ErrorIs(t, err, ErrPoolTooSmall)

	_, err = New(letters("A", "B", "A"), Options{})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestInitializeFillsVisibleSet(t *testing.T) {
	content := testimonial.Seed()
	rec := &recorder{}
	engine, err := New(content, Options{Rand: NewRand(42), Renderer: rec, Scheduler: &fakeScheduler{}})
	require.NoError(t, err)

	engine.Initialize()
	state := engine.Snapshot()

	require.Len(t, state.Visible, 3)
	require.Len(t, state.Available, len(content)-3)
	requireInvariants(t, content, state)
	assert.Equal(t, -1, state.Transitioning)
	assert.Equal(t, 3, rec.Count("render"))

	engine.Initialize()
	assert.Equal(t, 3, rec.Count("render"), "second Initialize must be a no-op")
}

func TestReplaceScenario(t *testing.T) {
	content := letters("A", "B", "C", "D", "E")
	sched := &fakeScheduler{}
	rec := &recorder{}
	engine, err := New(content, Options{
		Shuffle:   orderBy("C", "A", "E", "B", "D"),
		PickSlot:  fixedSlot(1),
		Scheduler: sched,
		Renderer:  rec,
	})
	require.NoError(t, err)

	engine.Initialize()
	state := engine.Snapshot()
	require.Equal(t, []string{"C", "A", "E"}, names(state.Visible))
	require.Equal(t, []string{"B", "D"}, names(state.Available))

	require.Equal(t, OutcomeStarted, engine.Replace(DirectionNext))

	state = engine.Snapshot()
	require.Equal(t, 1, state.Transitioning)
	require.Equal(t, []string{"C", "A", "E"}, names(state.Visible), "slot must keep old content while fading out")
	require.Equal(t, []string{"D"}, names(state.Available))

	sched.Advance(499 * time.Millisecond)
	require.Equal(t, 1, engine.Snapshot().Transitioning)

	sched.Advance(time.Millisecond)
	state = engine.Snapshot()
	assert.Equal(t, -1, state.Transitioning)
	assert.Equal(t, []string{"C", "B", "E"}, names(state.Visible))
	assert.Equal(t, []string{"D", "A"}, names(state.Available))
	assert.Equal(t, 1, state.Rotations)

	want := []string{
		"render 0 C", "render 1 A", "render 2 E",
		"start 1", "render 1 B", "end 1",
	}
	if diff := cmp.Diff(want, rec.Events()); diff != "" {
		t.Fatalf("render events mismatch (-want +got):\n%s", diff)
	}
}

func TestInvariantsHoldAcrossManyReplacements(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			content := letters("A", "B", "C", "D", "E", "F")
			sched := &fakeScheduler{}
			engine, err := New(content, Options{Rand: NewRand(seed), Scheduler: sched})
			require.NoError(t, err)

			engine.Initialize()
			requireInvariants(t, content, engine.Snapshot())

			for i := 0; i < 200; i++ {
				before := engine.Snapshot()
				require.Equal(t, OutcomeStarted, engine.Replace(DirectionPrevious))
				slot := engine.Snapshot().Transitioning
				outgoing := before.Visible[slot]

				sched.Advance(DefaultFadeDuration)
				after := engine.Snapshot()
				requireInvariants(t, content, after)
				require.Equal(t, outgoing.Name, after.Available[len(after.Available)-1].Name,
					"outgoing testimonial must return to the pool tail")
			}
			require.Equal(t, 200, engine.Snapshot().Rotations)
		})
	}
}

func TestReplaceRebuildsEmptyPool(t *testing.T) {
	content := letters("A", "B", "C", "D", "E")
	sched := &fakeScheduler{}
	engine, err := New(content, Options{
		Shuffle:   orderBy("E", "C", "A", "B", "D"),
		PickSlot:  fixedSlot(0),
		Scheduler: sched,
	})
	require.NoError(t, err)
	engine.Initialize()

	engine.mu.Lock()
	engine.available = nil
	engine.mu.Unlock()

	require.NotPanics(t, func() { engine.Replace(DirectionAuto) })
	require.Equal(t, []string{"D"}, names(engine.Snapshot().Available), "rebuild keeps content pool order")

	sched.Advance(DefaultFadeDuration)
	state := engine.Snapshot()
	assert.Equal(t, []string{"B", "C", "A"}, names(state.Visible))
	assert.Equal(t, []string{"D", "E"}, names(state.Available))
	requireInvariants(t, content, state)
}

func TestReplaceWithNothingToSwap(t *testing.T) {
	content := letters("A", "B", "C")
	sched := &fakeScheduler{}
	rec := &recorder{}
	engine, err := New(content, Options{Scheduler: sched, Renderer: rec})
	require.NoError(t, err)
	engine.Initialize()

	require.Equal(t, OutcomeIgnored, engine.Replace(DirectionNext))
	sched.Advance(time.Second)

	state := engine.Snapshot()
	assert.Equal(t, -1, state.Transitioning)
	assert.Equal(t, 0, state.Rotations)
	assert.Equal(t, 0, rec.Count("start"))
}

func TestReplaceBeforeInitializeIsIgnored(t *testing.T) {
	engine, err := New(letters("A", "B", "C", "D"), Options{Scheduler: &fakeScheduler{}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, engine.Replace(DirectionNext))
	assert.Empty(t, engine.Snapshot().Visible)
}

func TestStartThenStopNeverRotates(t *testing.T) {
	sched := &fakeScheduler{}
	rec := &recorder{}
	engine, err := New(testimonial.Seed(), Options{Scheduler: sched, Renderer: rec})
	require.NoError(t, err)
	engine.Initialize()

	engine.StartAutoRotation()
	sched.Advance(4 * time.Second)
	engine.StopAutoRotation()
	sched.Advance(30 * time.Second)

	assert.Equal(t, 0, rec.Count("start"))
	assert.Equal(t, 0, engine.Snapshot().Rotations)
	assert.False(t, engine.Snapshot().AutoRotating)

	engine.StopAutoRotation()
}

func TestAutoRotationRunsOnInterval(t *testing.T) {
	sched := &fakeScheduler{}
	engine, err := New(testimonial.Seed(), Options{Scheduler: sched})
	require.NoError(t, err)
	engine.Initialize()

	engine.StartAutoRotation()
	engine.StartAutoRotation()

	sched.Advance(5 * time.Second)
	require.NotEqual(t, -1, engine.Snapshot().Transitioning)
	sched.Advance(500 * time.Millisecond)
	require.Equal(t, 1, engine.Snapshot().Rotations, "restarting must not leave a second schedule behind")

	sched.Advance(5500 * time.Millisecond)
	require.Equal(t, 2, engine.Snapshot().Rotations)
}

func TestManualReplaceRestartsAutoTimer(t *testing.T) {
	sched := &fakeScheduler{}
	rec := &recorder{}
	engine, err := New(testimonial.Seed(), Options{Scheduler: sched, Renderer: rec})
	require.NoError(t, err)
	engine.Initialize()
	engine.StartAutoRotation()

	sched.Advance(4 * time.Second)
	require.Equal(t, OutcomeStarted, engine.Replace(DirectionNext))
	sched.Advance(500 * time.Millisecond)
	require.Equal(t, 1, rec.Count("start"))

	sched.Advance(4900 * time.Millisecond)
	require.Equal(t, 1, rec.Count("start"), "auto timer restarts after the manual swap commits")

	sched.Advance(100 * time.Millisecond)
	require.Equal(t, 2, rec.Count("start"))
}

func TestManualReplaceAfterStopKeepsRotationStopped(t *testing.T) {
	sched := &fakeScheduler{}
	engine, err := New(testimonial.Seed(), Options{Scheduler: sched})
	require.NoError(t, err)
	engine.Initialize()
	engine.StartAutoRotation()
	engine.StopAutoRotation()

	engine.Replace(DirectionPrevious)
	sched.Advance(time.Minute)
	assert.Equal(t, 1, engine.Snapshot().Rotations)
}

func TestTriggersDuringTransitionAreSerialized(t *testing.T) {
	content := testimonial.Seed()
	sched := &fakeScheduler{}
	slots := []int{2, 2, 2}
	engine, err := New(content, Options{
		Scheduler: sched,
		Rand:      NewRand(7),
		PickSlot: func(int) int {
			slot := slots[0]
			slots = slots[1:]
			return slot
		},
	})
	require.NoError(t, err)
	engine.Initialize()

	require.Equal(t, OutcomeStarted, engine.Replace(DirectionNext))
	require.Equal(t, OutcomeQueued, engine.Replace(DirectionPrevious))
	require.Equal(t, OutcomeDropped, engine.Replace(DirectionNext))
	require.Equal(t, OutcomeDropped, engine.Replace(DirectionAuto))

	sched.Advance(500 * time.Millisecond)
	state := engine.Snapshot()
	require.Equal(t, 1, state.Rotations)
	require.Equal(t, 2, state.Transitioning, "queued trigger starts right after the commit")
	requireInvariants(t, content, state)

	sched.Advance(500 * time.Millisecond)
	state = engine.Snapshot()
	require.Equal(t, 2, state.Rotations)
	require.Equal(t, -1, state.Transitioning)
	requireInvariants(t, content, state)
}

func TestCloseCancelsPendingTransition(t *testing.T) {
	content := letters("A", "B", "C", "D", "E")
	sched := &fakeScheduler{}
	rec := &recorder{}
	engine, err := New(content, Options{
		Shuffle:   orderBy("A", "B", "C", "D", "E"),
		PickSlot:  fixedSlot(2),
		Scheduler: sched,
		Renderer:  rec,
	})
	require.NoError(t, err)
	engine.Initialize()
	engine.StartAutoRotation()

	require.Equal(t, OutcomeStarted, engine.Replace(DirectionNext))
	engine.Close()

	state := engine.Snapshot()
	assert.Equal(t, []string{"A", "B", "C"}, names(state.Visible))
	assert.Equal(t, []string{"D", "E"}, names(state.Available))
	assert.Equal(t, -1, state.Transitioning)
	assert.False(t, state.AutoRotating)
	requireInvariants(t, content, state)
	assert.Equal(t, "end 2", rec.Events()[len(rec.Events())-1])

	assert.Equal(t, OutcomeIgnored, engine.Replace(DirectionNext))
	engine.StartAutoRotation()
	sched.Advance(time.Minute)
	assert.Equal(t, 0, engine.Snapshot().Rotations)

	engine.Close()
}

func TestSystemSchedulerRotates(t *testing.T) {
	rec := &recorder{}
	engine, err := New(testimonial.Seed(), Options{
		Interval:     20 * time.Millisecond,
		FadeDuration: 5 * time.Millisecond,
		Renderer:     rec,
	})
	require.NoError(t, err)
	defer engine.Close()

	engine.Initialize()
	engine.StartAutoRotation()

	require.Eventually(t, func() bool {
		return engine.Snapshot().Rotations >= 2
	}, 2*time.Second, 5*time.Millisecond)

	engine.StopAutoRotation()
	requireInvariants(t, testimonial.Seed(), waitIdle(t, engine))
}

func waitIdle(t *testing.T, engine *Engine) State {
	t.Helper()
	var state State
	require.Eventually(t, func() bool {
		state = engine.Snapshot()
		return state.Transitioning == -1
	}, time.Second, time.Millisecond)
	return state
}

func TestParseDirection(t *testing.T) {
	for _, raw := range []string{"auto", "next", "previous"} {
		d, ok := ParseDirection(raw)
		require.True(t, ok, raw)
		require.Equal(t, Direction(raw), d)
	}
	_, ok := ParseDirection("left")
	require.False(t, ok)
}

func TestShuffleIsPermutation(t *testing.T) {
	items := letters("A", "B", "C", "D", "E", "F", "G")
	shuffle(NewRand(3), items)

	got := names(items)
	seen := make(map[string]bool)
	for _, name := range got {
		seen[name] = true
	}
	require.Len(t, seen, 7)

	again := letters("A", "B", "C", "D", "E", "F", "G")
	shuffle(NewRand(3), again)
	require.Equal(t, got, names(again), "same seed yields the same order")
}
