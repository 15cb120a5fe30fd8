// Package storage persists produced documents as artifacts under one
// directory per category.
package storage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
	bufSize              = 64 * 1024

	// TempPrefix starts the name of every in-flight write.
	TempPrefix = ".tmp-"
)

// ArtifactStore writes artifacts atomically into category directories.
type ArtifactStore struct {
	root       string
	categories map[string]domain.Category
	logger     *observability.Logger
	now        func() time.Time
}

// NewArtifactStore creates the store and every category directory under root.
func NewArtifactStore(root string, categories []domain.Category, logger *observability.Logger) (*ArtifactStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, domain.ConfigError("storage root is required", nil)
	}
	if logger == nil {
		logger = observability.Nop()
	}

	s := &ArtifactStore{
		root:       root,
		categories: make(map[string]domain.Category, len(categories)),
		logger:     logger.WithComponent("artifact_store"),
		now:        time.Now,
	}

	for _, c := range categories {
		if err := os.MkdirAll(filepath.Join(root, c.Dir), dirPerm); err != nil {
			return nil, domain.StorageError(fmt.Sprintf("Failed to create %s directory", c.Dir), err)
		}
		s.categories[c.Name] = c
	}

	return s, nil
}

// Root returns the storage root directory.
func (s *ArtifactStore) Root() string {
	return s.root
}

// Dir returns the directory a category's artifacts live in.
func (s *ArtifactStore) Dir(c domain.Category) string {
	return filepath.Join(s.root, c.Dir)
}

// Persist writes data as a new artifact of category c.
func (s *ArtifactStore) Persist(ctx context.Context, c domain.Category, data []byte) (domain.Artifact, error) {
	if _, ok := s.categories[c.Name]; !ok {
		return domain.Artifact{}, domain.StorageError("Unknown artifact category", fmt.Errorf("category %q is not registered", c.Name))
	}
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, err
	}

	name := NewName(c)
	dest := filepath.Join(s.Dir(c), name)

	if err := writeAtomic(dest, bytes.NewReader(data)); err != nil {
		return domain.Artifact{}, domain.StorageError("Failed to save file", err)
	}

	artifact := domain.Artifact{
		Category:  c,
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: s.now(),
	}

	s.logger.WithContext(ctx).Debug().
		Artifact(artifact).
		Msg("Artifact persisted")

	return artifact, nil
}

// Open opens an artifact for reading.
func (s *ArtifactStore) Open(c domain.Category, name string) (*os.File, error) {
	if err := ValidateName(c, name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir(c), name))
	if err != nil {
		return nil, domain.StorageError("Failed to open artifact", err)
	}
	return f, nil
}

// URL returns the absolute download URL of a.
func URL(baseURL string, a domain.Artifact) string {
	return strings.TrimRight(baseURL, "/") + a.Path()
}

// NewName generates a unique artifact file name for c.
func NewName(c domain.Category) string {
	return fmt.Sprintf("%s_%s.%s", c.Prefix, uuid.NewString(), c.Ext)
}

// ValidateName rejects names that are not plain files of category c.
func ValidateName(c domain.Category, name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return domain.ValidationError("Invalid file name", nil)
	}
	if !strings.HasPrefix(name, c.Prefix+"_") || !strings.HasSuffix(name, "."+c.Ext) {
		return domain.ValidationError("Invalid file name", nil)
	}
	return nil
}

// writeAtomic writes r to a temp file beside dest, syncs it, and renames it
// into place. The temp file is removed on any failure.
func writeAtomic(dest string, r io.Reader) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, filePerm)

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriterSize(tmp, bufSize)
	if _, err := io.Copy(bw, r); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	syncDir(dir)
	return nil
}

// syncDir makes the rename durable where the platform supports it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
