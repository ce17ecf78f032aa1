package transport

import "sync"

// loop runs posted tasks one at a time, in posting order, on a single
// goroutine. Socket callbacks, timer fires and observer notifications all go
// through it, which gives a Transport the cooperative single-threaded
// execution model without holding a lock while user code runs.
type loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closing bool
	done    chan struct{}
	onPanic func(r interface{})
}

func newLoop(onPanic func(r interface{})) *loop {
	l := &loop{done: make(chan struct{}), onPanic: onPanic}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// post queues f. It never blocks, so it is safe to call from inside a task.
// Tasks posted after close are dropped.
func (l *loop) post(f func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closing {
		return false
	}
	l.queue = append(l.queue, f)
	l.cond.Signal()
	return true
}

// close stops accepting tasks. Already queued tasks still run.
func (l *loop) close() {
	l.mu.Lock()
	l.closing = true
	l.cond.Signal()
	l.mu.Unlock()
}

// sync waits until every task queued before the call has run.
func (l *loop) sync() {
	ran := make(chan struct{})
	if !l.post(func() { close(ran) }) {
		<-l.done
		return
	}
	select {
	case <-ran:
	case <-l.done:
	}
}

func (l *loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closing {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.runTask(task)
	}
}

func (l *loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil && l.onPanic != nil {
			l.onPanic(r)
		}
	}()
	task()
}
