package evidence

import (
	"bufio"
	"io"
	"sync"
)

// WriterSink adapts an io.Writer (a file, or in tests a bytes.Buffer) into a
// Sink, flushing after every line so a crash doesn't lose buffered entries
// and so golden-trace tests can read back output immediately.
type WriterSink struct {
	mu  sync.Mutex
	buf *bufio.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{buf: bufio.NewWriter(w)}
}

func (s *WriterSink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.buf.Write(line); err != nil {
		return err
	}
	return s.buf.Flush()
}
