package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFileWriter is an io.Writer that appends to "<prefix>-YYYYMMDD.log"
// inside dir and switches to a new file when the local date changes.
type DailyFileWriter struct {
	dir    string
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewDailyFileWriter creates dir if needed and returns a writer for it.
func NewDailyFileWriter(dir, prefix string) (*DailyFileWriter, error) {
	if prefix == "" {
		prefix = "swarm"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &DailyFileWriter{dir: dir, prefix: prefix, now: time.Now}, nil
}

// Write appends p to the file for the current day.
func (w *DailyFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.now().Format("20060102")
	if w.file == nil || day != w.day {
		if err := w.rotate(day); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

// Path returns the file the next write of today would go to.
func (w *DailyFileWriter) Path() string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", w.prefix, w.now().Format("20060102")))
}

// Close closes the current file.
func (w *DailyFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *DailyFileWriter) rotate(day string) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", w.prefix, day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	w.file = f
	w.day = day
	return nil
}
