package gen

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/tools/imports"
)

// FileWriter formats generated sources with goimports and writes them
// under a root directory. It is safe for concurrent use.
type FileWriter struct {
	outDir string

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation performance
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
	FormatTime     time.Duration
	WriteTime      time.Duration
}

// NewFileWriter creates a writer rooted at outDir.
func NewFileWriter(outDir string) *FileWriter {
	return &FileWriter{outDir: outDir}
}

// Metrics returns a copy of the writer metrics.
func (w *FileWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write formats src and writes it to name, relative to the root
// directory. When formatting fails, the unformatted source is written
// next to the target with an ".error" suffix for debugging.
func (w *FileWriter) Write(phase, name string, src []byte) error {
	fullPath := filepath.Join(w.outDir, name)

	start := time.Now()
	formatted, err := imports.Process(fullPath, src, nil)
	if err != nil {
		debugPath := fullPath + ".error"
		_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
		_ = os.WriteFile(debugPath, src, 0o644)
		return NewGenerationError(phase, name, "format (unformatted written to "+debugPath+")", err)
	}
	formatTime := time.Since(start)

	start = time.Now()
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerationError(phase, name, "create directory", err)
	}
	if err := os.WriteFile(fullPath, formatted, 0o644); err != nil {
		return NewGenerationError(phase, name, "write", err)
	}

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(formatted))
	w.metrics.FormatTime += formatTime
	w.metrics.WriteTime += time.Since(start)
	w.mu.Unlock()
	return nil
}
