// Package file provides a filesystem-backed persistence adapter for local
// development. Attributes are stored as one JSON file per user under a
// configured directory, so a dialog session on the command line can pick up
// where the previous one left off.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/tendril/pkg/model"
)

// Store implements ports.PersistenceAdapter using the local filesystem.
// Writes go through a temp file and an atomic rename, so concurrent saves
// for the same user cannot leave a partially written file behind.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".tendril/attributes".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".tendril", "attributes")
	}
	return &Store{BasePath: basePath}
}

// SaveAttributes persists the attribute map to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it
// to the destination.
func (s *Store) SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	userID := envelope.UserID()
	if userID == "" {
		return fmt.Errorf("envelope has no user id")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure attributes directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, userID+".json")

	data, err := json.MarshalIndent(attributes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	// The temp file lives in the same directory so the rename below stays on
	// one filesystem (required for atomicity).
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+userID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()    // Ensure closed
		_ = os.Remove(tmpPath) // Remove if still exists (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if the destination exists, so remove it
	// first. The delete+rename window is acceptable for CLI usage compared to
	// a plain write leaving a partial file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing attributes file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to attributes file: %w", err)
	}

	return nil
}

// GetAttributes retrieves the stored attribute map for the envelope's user.
// A user without a stored file is reported as not found, not as an error.
func (s *Store) GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	userID := envelope.UserID()
	if userID == "" {
		return nil, false, fmt.Errorf("envelope has no user id")
	}

	filePath := filepath.Join(s.BasePath, userID+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read attributes file: %w", err)
	}

	var attributes map[string]any
	if err := json.Unmarshal(data, &attributes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal attributes: %w", err)
	}

	return attributes, true, nil
}

// DeleteAttributes removes the user's attributes file.
func (s *Store) DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error {
	userID := envelope.UserID()
	if userID == "" {
		return fmt.Errorf("envelope has no user id")
	}

	filePath := filepath.Join(s.BasePath, userID+".json")

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete attributes file: %w", err)
	}

	return nil
}
