package logging

import (
	"io"
	"os"
	"sync/atomic"
)

// sink is the stderr stream shared by every component logger. Swapping it
// redirects loggers that were created earlier too.
type sink struct {
	current atomic.Pointer[io.Writer]
}

func newSink(w io.Writer) *sink {
	s := &sink{}
	s.current.Store(&w)
	return s
}

func (s *sink) Write(p []byte) (int, error) {
	return (*s.current.Load()).Write(p)
}

var stderrSink = newSink(os.Stderr)

// SetGlobalOutput redirects the stderr stream of all component loggers.
func SetGlobalOutput(w io.Writer) {
	stderrSink.current.Store(&w)
}

// GetGlobalOutput returns the shared stderr stream.
func GetGlobalOutput() io.Writer {
	return stderrSink
}
