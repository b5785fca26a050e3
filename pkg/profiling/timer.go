// Package profiling records how long the phases of one rnsgit run take.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

// span is one timed phase. Children are kept in start order.
type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	parent   *span
	recorder *Recorder
}

func (s *span) Stop() {
	s.recorder.end(s)
}

// Recorder holds the span tree of one run. Spans nest by call order, so a
// Recorder suits the sequential phases of a command, not parallel work.
type Recorder struct {
	mu   sync.Mutex
	root *span
	open *span
}

// NewRecorder starts a recorder whose root span begins now.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.root = &span{name: "total", start: time.Now(), recorder: r}
	r.open = r.root
	return r
}

// Start opens a span under the innermost open span.
func (r *Recorder) Start(name string) Stopper {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &span{name: name, start: time.Now(), parent: r.open, recorder: r}
	r.open.children = append(r.open.children, s)
	r.open = s
	return s
}

func (r *Recorder) end(s *span) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.duration != 0 {
		return
	}
	s.duration = time.Since(s.start)
	// Spans stopped out of order close everything opened after them
	for o := r.open; o != nil && o != r.root; o = o.parent {
		if o == s {
			r.open = s.parent
			break
		}
	}
}

// Summarize writes the span tree with each span's share of the total.
func (r *Recorder) Summarize(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := time.Since(r.root.start)
	fmt.Fprintln(w, "\n--- Timing ---")
	for _, child := range r.root.children {
		printSpan(w, child, 0, total)
	}
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
}

func printSpan(w io.Writer, s *span, depth int, total time.Duration) {
	duration := s.duration
	if duration == 0 {
		duration = time.Since(s.start)
	}
	percent := 0.0
	if total > 0 {
		percent = float64(duration) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n",
		strings.Repeat("  ", depth), s.name, duration.Round(100*time.Microsecond), percent)
	for _, child := range s.children {
		printSpan(w, child, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}

var (
	globalMu sync.Mutex
	global   *Recorder
)

// Enable installs a fresh global recorder.
func Enable() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = NewRecorder()
}

// Disable removes the global recorder.
func Disable() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = nil
}

// Start opens a span on the global recorder, or does nothing when timing
// is off.
func Start(name string) Stopper {
	globalMu.Lock()
	r := global
	globalMu.Unlock()
	if r == nil {
		return noopStopper{}
	}
	return r.Start(name)
}

// Summarize writes the global recorder's tree, if timing is on.
func Summarize(w io.Writer) {
	globalMu.Lock()
	r := global
	globalMu.Unlock()
	if r != nil {
		r.Summarize(w)
	}
}
