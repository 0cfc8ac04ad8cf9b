package halt

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type taskMsg struct {
	ready bool
	done  chan error
}

// HaltHandle supervises a group of goroutines through a ready → halt →
// join lifecycle. Spawn enqueues a task and hands it a Tripwire clone;
// Ready marks the end of the spawn phase; Halt fires the shared tripwire;
// Join drains the queue, aggregating completions and panics.
//
// Spawn/Ready may be called from any number of goroutines. Join is
// callable exactly once.
type HaltHandle struct {
	trigger    Trigger
	notifyJoin chan struct{}

	mu    sync.Mutex
	cond  *sync.Cond
	queue []taskMsg

	haltOnce   sync.Once
	signalOnce sync.Once
	joinOnce   sync.Once
	joinResult error

	logger *zap.Logger
}

// New returns a HaltHandle ready to accept Spawn/Ready calls.
func New(opts ...Option) *HaltHandle {
	trigger, _ := NewTripwire()
	h := &HaltHandle{
		trigger:    trigger,
		notifyJoin: make(chan struct{}),
		logger:     zap.NewNop(),
	}
	h.cond = sync.NewCond(&h.mu)
	for _, o := range opts {
		o(h)
	}
	return h
}

// Spawn launches fn in a new goroutine, passing it a Tripwire clone that
// resolves when Halt fires (possibly already fired, if Halt ran before
// this Spawn). A panic inside fn is recovered and reported as the task's
// completion error rather than crashing the process.
func (h *HaltHandle) Spawn(fn func(Tripwire)) {
	tw := h.trigger.Tripwire()
	done := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()
		fn(tw)
		done <- nil
	}()

	h.enqueue(taskMsg{done: done})
}

// Ready marks the end of the spawn phase: Join will not return Ok until
// it has observed this sentinel and every task enqueued before it has
// completed. Calling it more than once per handle is a programmer error.
func (h *HaltHandle) Ready() {
	h.enqueue(taskMsg{ready: true})
}

func (h *HaltHandle) enqueue(msg taskMsg) {
	h.mu.Lock()
	h.queue = append(h.queue, msg)
	h.mu.Unlock()
	h.cond.Signal()
}

// Halt fires the shared tripwire and wakes any Join waiting on it. It is
// idempotent: calling it any number of times has the same effect as
// calling it once.
func (h *HaltHandle) Halt() {
	h.haltOnce.Do(func() {
		h.logger.Debug("halt: firing tripwire")
		h.trigger.Cancel()
		close(h.notifyJoin)
	})
}

// HaltOnSignal installs, at most once per handle, a listener on the
// platform's termination/interrupt signals that calls Halt.
func (h *HaltHandle) HaltOnSignal() {
	h.signalOnce.Do(func() {
		ch := make(chan struct{}, 1)
		stop := notifyTerminationSignal(ch)
		go func() {
			defer stop()
			<-ch
			h.logger.Info("halt: terminating on platform signal")
			h.Halt()
		}()
	})
}

// Join waits for every task enqueued before the Ready barrier to
// complete. If timeout is zero, Join waits indefinitely once Halt has
// fired. Join returns the first panic observed from any supervised task
// even if a timeout would also apply; absent a panic, it returns
// ErrTimeout if the timeout elapsed before the Ready-bounded prefix
// finished, or nil if every task finished naturally.
//
// Join is callable exactly once; subsequent calls return immediately
// with the result of the first call.
func (h *HaltHandle) Join(timeout time.Duration) error {
	h.joinOnce.Do(func() {
		h.joinResult = h.join(timeout)
	})
	return h.joinResult
}

func (h *HaltHandle) join(timeout time.Duration) error {
	drained := make(chan error, 1)
	go func() { drained <- h.drainUntilReady() }()

	select {
	case err := <-drained:
		return err
	case <-h.notifyJoin:
	}

	if timeout <= 0 {
		return <-drained
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-drained:
		return err
	case <-timer.C:
		return ErrTimeout
	}
}

// drainUntilReady consumes queued tasks in order. On the first task
// panic it short-circuits: the error is returned immediately without
// waiting for remaining tasks, and the rest of the queue is drained in
// the background so goroutines still get reaped.
func (h *HaltHandle) drainUntilReady() error {
	for {
		msg := h.nextMsg()
		if msg.ready {
			return nil
		}
		if err := <-msg.done; err != nil {
			go h.drainRemaining()
			return &Error{Kind: KindJoin, Err: err}
		}
	}
}

func (h *HaltHandle) drainRemaining() {
	for {
		msg := h.nextMsg()
		if msg.ready {
			return
		}
		<-msg.done
	}
}

func (h *HaltHandle) nextMsg() taskMsg {
	h.mu.Lock()
	defer h.mu.Unlock()
	for len(h.queue) == 0 {
		h.cond.Wait()
	}
	msg := h.queue[0]
	h.queue = h.queue[1:]
	return msg
}

// ZapFields renders this handle's lifecycle state as structured zap
// fields, mirroring the dual logging shape used throughout this module.
func (h *HaltHandle) ZapFields() []zap.Field {
	return []zap.Field{zap.Bool("fired", h.trigger.Tripwire().Fired())}
}

// LogrusFields renders this handle's lifecycle state as logrus fields.
func (h *HaltHandle) LogrusFields() logrus.Fields {
	return logrus.Fields{"fired": h.trigger.Tripwire().Fired()}
}
