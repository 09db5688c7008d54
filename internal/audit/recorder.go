package audit

import (
	"context"
	"expvar"
)

var metricAuditDroppedTotal = expvar.NewInt("audit_dropped_total")

type entry struct {
	seedGen  *SeedGeneration
	seedUse  *SeedUsage
	security *SecurityEvent
}

// Recorder decouples audit writes from the request path: callers enqueue and
// move on, a single worker drains to the wrapped sink. The queue is bounded;
// when it is full the entry is counted and dropped rather than blocking the
// financial transaction that produced it.
type Recorder struct {
	sink Sink
	ch   chan entry
	done chan struct{}
}

func NewRecorder(sink Sink, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Recorder{
		sink: sink,
		ch:   make(chan entry, queueSize),
		done: make(chan struct{}),
	}
}

func (r *Recorder) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		for {
			select {
			case <-ctx.Done():
				r.drain()
				return
			case e, ok := <-r.ch:
				if !ok {
					return
				}
				r.deliver(e)
			}
		}
	}()
}

// Wait blocks until the worker has stopped. Call after cancelling the Start
// context.
func (r *Recorder) Wait() { <-r.done }

func (r *Recorder) drain() {
	for {
		select {
		case e := <-r.ch:
			r.deliver(e)
		default:
			return
		}
	}
}

func (r *Recorder) deliver(e entry) {
	switch {
	case e.seedGen != nil:
		r.sink.LogSeedGeneration(*e.seedGen)
	case e.seedUse != nil:
		r.sink.LogSeedUsage(*e.seedUse)
	case e.security != nil:
		r.sink.LogSecurityEvent(*e.security)
	}
}

func (r *Recorder) enqueue(e entry) {
	select {
	case r.ch <- e:
	default:
		metricAuditDroppedTotal.Add(1)
	}
}

func (r *Recorder) LogSeedGeneration(ev SeedGeneration) { r.enqueue(entry{seedGen: &ev}) }
func (r *Recorder) LogSeedUsage(ev SeedUsage)           { r.enqueue(entry{seedUse: &ev}) }
func (r *Recorder) LogSecurityEvent(ev SecurityEvent)   { r.enqueue(entry{security: &ev}) }
