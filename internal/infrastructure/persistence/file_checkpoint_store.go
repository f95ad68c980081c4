package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

// FileCheckpointStore implements integration.CheckpointStore on a JSON file.
// Saves write a temp file in the same directory and rename it over the
// target, so a crash leaves either the old or the new checkpoint.
type FileCheckpointStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileCheckpointStore creates a checkpoint store backed by the file at path
func NewFileCheckpointStore(path string, logger *zap.Logger) *FileCheckpointStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCheckpointStore{
		path:   path,
		logger: logger.Named("checkpoint").With(zap.String("path", path)),
	}
}

// Path returns the checkpoint file path
func (s *FileCheckpointStore) Path() string {
	return s.path
}

// Load reads the checkpoint file. A missing, empty or corrupt file yields an
// empty checkpoint and a warning.
func (s *FileCheckpointStore) Load(_ context.Context) (*integration.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Checkpoint file not found, starting from an empty checkpoint")
		return integration.NewCheckpoint(), nil
	}
	if err != nil {
		s.logger.Warn("Checkpoint file unreadable, starting from an empty checkpoint", zap.Error(err))
		return integration.NewCheckpoint(), nil
	}
	if len(data) == 0 {
		s.logger.Warn("Checkpoint file empty, starting from an empty checkpoint")
		return integration.NewCheckpoint(), nil
	}

	var cp integration.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn("Checkpoint file corrupt, starting from an empty checkpoint", zap.Error(err))
		return integration.NewCheckpoint(), nil
	}
	if cp.ProcessedOrderIDs == nil {
		cp.ProcessedOrderIDs = make([]string, 0)
	}
	// Clone normalises the processed id index
	return cp.Clone(), nil
}

// Save atomically replaces the checkpoint file
func (s *FileCheckpointStore) Save(_ context.Context, checkpoint *integration.Checkpoint) error {
	if checkpoint == nil {
		return errors.New("checkpoint: nil checkpoint")
	}

	data, err := json.MarshalIndent(checkpoint.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Ensure FileCheckpointStore implements the checkpoint port
var _ integration.CheckpointStore = (*FileCheckpointStore)(nil)
