// Package scheduler fires an event at every calendar boundary the tracker
// cares about: the next midnight, the next Monday midnight and the next first
// of the month. Each fired boundary re-arms itself for the following period,
// so the engine keeps emitting for as long as it runs.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/taskcycle/internal/period"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

// Kind names the calendar boundary an event represents.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// BoundaryEvent is emitted when a calendar boundary passes.
type BoundaryEvent struct {
	Kind      Kind
	TriggerAt time.Time
}

type boundaryQueue []BoundaryEvent

func (q boundaryQueue) Len() int { return len(q) }

func (q boundaryQueue) Less(i, j int) bool {
	return q[i].TriggerAt.Before(q[j].TriggerAt)
}

func (q boundaryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *boundaryQueue) Push(x any) {
	*q = append(*q, x.(BoundaryEvent))
}

func (q *boundaryQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	*q = old[0 : n-1]
	return ev
}

type Engine struct {
	mu      sync.Mutex
	queue   boundaryQueue
	out     chan BoundaryEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(boundaryQueue, 0),
		out:    make(chan BoundaryEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan BoundaryEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule arms one boundary event. Fired events of a known kind re-arm
// themselves; calling Schedule again for the same kind just adds an extra
// occurrence.
func (e *Engine) Schedule(ev BoundaryEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	heap.Push(&e.queue, ev)
	e.signalWakeup()
	return nil
}

// ScheduleBoundaries arms the three calendar boundaries following now.
func (e *Engine) ScheduleBoundaries(now time.Time) error {
	events := []BoundaryEvent{
		{Kind: KindDaily, TriggerAt: period.NextDayStart(now)},
		{Kind: KindWeekly, TriggerAt: period.NextWeekStart(now)},
		{Kind: KindMonthly, TriggerAt: period.NextMonthStart(now)},
	}
	for _, ev := range events {
		if err := e.Schedule(ev); err != nil {
			return err
		}
	}
	return nil
}

// Dropped counts events lost because the output buffer was full.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (BoundaryEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return BoundaryEvent{}, false
	}
	return e.queue[0], true
}

// popDue pops every due event and re-arms each known kind for its following
// boundary.
func (e *Engine) popDue(now time.Time) []BoundaryEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]BoundaryEvent, 0)
	for len(e.queue) > 0 {
		next := e.queue[0]
		if next.TriggerAt.After(now) {
			break
		}
		ev := heap.Pop(&e.queue).(BoundaryEvent)
		out = append(out, ev)
		if rearmed, ok := nextOccurrence(ev, now); ok {
			heap.Push(&e.queue, rearmed)
		}
	}
	return out
}

func nextOccurrence(ev BoundaryEvent, now time.Time) (BoundaryEvent, bool) {
	switch ev.Kind {
	case KindDaily:
		return BoundaryEvent{Kind: KindDaily, TriggerAt: period.NextDayStart(now)}, true
	case KindWeekly:
		return BoundaryEvent{Kind: KindWeekly, TriggerAt: period.NextWeekStart(now)}, true
	case KindMonthly:
		return BoundaryEvent{Kind: KindMonthly, TriggerAt: period.NextMonthStart(now)}, true
	default:
		return BoundaryEvent{}, false
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
