package blockdev

import (
	"sync"
)

////////////////////////////////////////////////////////////////////////////////

// CompletionLoop dispatches completion callbacks and deferred functions on a
// single goroutine, so callbacks never observe each other mid-flight.
// Schedule may be called from any goroutine, including from inside a callback
// already running on the loop.
type CompletionLoop struct {
	mutex   sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}
}

func NewCompletionLoop() *CompletionLoop {
	loop := &CompletionLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go loop.run()
	return loop
}

// Schedule enqueues f to run on the loop goroutine. Functions run in the
// order they were scheduled.
func (l *CompletionLoop) Schedule(f func()) {
	l.mutex.Lock()
	if l.stopped {
		l.mutex.Unlock()
		return
	}
	l.queue = append(l.queue, f)
	l.mutex.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Close stops the loop after draining all scheduled functions and waits for
// the loop goroutine to exit.
func (l *CompletionLoop) Close() {
	l.mutex.Lock()
	l.stopped = true
	l.mutex.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	<-l.done
}

func (l *CompletionLoop) run() {
	defer close(l.done)

	for {
		l.mutex.Lock()
		batch := l.queue
		l.queue = nil
		stopped := l.stopped
		l.mutex.Unlock()

		if len(batch) == 0 {
			if stopped {
				return
			}

			<-l.wake
			continue
		}

		for _, f := range batch {
			f()
		}
	}
}
