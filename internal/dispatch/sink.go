package dispatch

import (
	"fmt"
	"os"
	"sync"
)

// Sink is an append-only destination for alert log lines.
type Sink interface {
	WriteLine(line string) error
}

// FileSink appends alert lines to a file. Appends are serialized with a
// mutex so the sink can be shared across engine instances.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the alert log at path in append mode.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open alert log '%s': %w", path, err)
	}
	return &FileSink{file: file}, nil
}

// WriteLine appends a single line to the log.
func (s *FileSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.file, line); err != nil {
		return fmt.Errorf("failed to append to alert log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
