package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
)

// FileStore keeps the game as a JSON document on disk
type FileStore struct {
	path   string
	logger *log.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore stores the game at path, creating parent directories on save
func NewFileStore(path string, logger *log.Logger) *FileStore {
	return &FileStore{path: path, logger: logger.WithPrefix("store").With("path", path)}
}

// Path returns the location of the saved game
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*game.HandState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &Error{Op: "load", Path: s.path, Err: err, retryable: true}
	}

	var h game.HandState
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, &Error{Op: "load", Path: s.path, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(h.Players) == 0 || h.Deck == nil {
		return nil, &Error{Op: "load", Path: s.path, Err: errors.New("saved game is incomplete")}
	}
	s.logger.Debug("Loaded game", "id", h.ID, "hand", h.HandNumber)
	return &h, nil
}

func (s *FileStore) Save(ctx context.Context, h *game.HandState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return &Error{Op: "save", Path: s.path, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &Error{Op: "save", Path: s.path, Err: err, retryable: true}
	}
	if err := writeAtomic(s.path, data, 0o644); err != nil {
		return &Error{Op: "save", Path: s.path, Err: err, retryable: true}
	}
	s.logger.Debug("Saved game", "id", h.ID, "hand", h.HandNumber, "bytes", len(data))
	return nil
}

func (s *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Op: "delete", Path: s.path, Err: err, retryable: true}
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it over the target, so a reader sees either the old or the new game
func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
