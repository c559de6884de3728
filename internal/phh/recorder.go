package phh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertables/internal/fileutil"
	"github.com/lox/pokertables/internal/game"
)

// FileRecorder writes every finished hand to <dir>/<table>/<hand>.phh. Each
// file is written atomically, so a reader never sees half a hand.
type FileRecorder struct {
	dir    string
	clock  quartz.Clock
	logger *log.Logger
}

// RecorderOption configures a FileRecorder.
type RecorderOption func(*FileRecorder)

// WithClock sets the clock used to timestamp hands.
func WithClock(c quartz.Clock) RecorderOption {
	return func(r *FileRecorder) { r.clock = c }
}

// WithLogger sets the parent logger.
func WithLogger(l *log.Logger) RecorderOption {
	return func(r *FileRecorder) { r.logger = l }
}

// NewFileRecorder creates dir if needed.
func NewFileRecorder(dir string, opts ...RecorderOption) (*FileRecorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("phh: history dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("phh: create dir: %w", err)
	}
	r := &FileRecorder{dir: dir, clock: quartz.NewReal(), logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithPrefix("phh")
	return r, nil
}

// Path returns where a hand is stored.
func (r *FileRecorder) Path(tableID, handID string) string {
	return filepath.Join(r.dir, tableID, handID+".phh")
}

// RecordHand implements game.Recorder.
func (r *FileRecorder) RecordHand(rec game.HandRecord) error {
	data, err := EncodeToBytes(FromRecord(rec, r.clock.Now()))
	if err != nil {
		return err
	}
	path := r.Path(rec.TableID, rec.HandID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("phh: create table dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("phh: write %s: %w", path, err)
	}
	r.logger.Debug("Hand written", "table", rec.TableID, "hand_id", rec.HandID, "path", path)
	return nil
}
