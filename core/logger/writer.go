package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter decouples log production from sink IO. Lines are queued on a
// channel and written out by a single goroutine, so call sites never wait on
// disk or stderr. A full queue blocks Write instead of dropping lines.
type asyncWriter struct {
	lines  chan []byte
	flushC chan chan error
	closed chan struct{}
	once   sync.Once
	out    *sinkGroup
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	aw := &asyncWriter{
		lines:  make(chan []byte, 512),
		flushC: make(chan chan error),
		closed: make(chan struct{}),
		out:    newSinkGroup(writers, bufSize),
	}
	go aw.run()
	return aw
}

func (w *asyncWriter) run() {
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.out.flush()
				close(w.closed)
				return
			}
			w.out.write(line)
		case ack := <-w.flushC:
			ack <- w.out.flush()
		}
	}
}

// Write queues one line for fan-out. The payload is copied, callers may
// reuse the slice.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.out.err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := make([]byte, len(p))
	copy(line, p)
	w.lines <- line
	return nil
}

// Flush blocks until everything queued so far has reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.out.err(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.flushC <- ack
	return <-ack
}

// Close stops the writer goroutine after draining the queue and reports the
// first write error seen over the writer's lifetime.
func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		close(w.lines)
	})
	<-w.closed
	return w.out.err()
}

// sinkGroup fans one line out to every sink and latches the first failure.
type sinkGroup struct {
	mu      sync.Mutex
	sinks   []*bufio.Writer
	failure error
}

func newSinkGroup(writers []io.Writer, bufSize int) *sinkGroup {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	g := &sinkGroup{}
	for _, w := range writers {
		if w != nil {
			g.sinks = append(g.sinks, bufio.NewWriterSize(w, bufSize))
		}
	}
	return g
}

func (g *sinkGroup) write(p []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, sink := range g.sinks {
		if _, err := sink.Write(p); err != nil {
			g.latch(err)
			return
		}
		if err := sink.Flush(); err != nil {
			g.latch(err)
			return
		}
	}
}

func (g *sinkGroup) flush() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var errs []error
	for _, sink := range g.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *sinkGroup) err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failure
}

// latch records err unless an earlier failure is already held. Callers hold mu.
func (g *sinkGroup) latch(err error) {
	if g.failure == nil {
		g.failure = err
	}
}
