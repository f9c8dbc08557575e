package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"cityconnect/internal/models"
)

// LocalStore writes images into a flat directory of an afero filesystem.
type LocalStore struct {
	fs afero.Fs
}

func NewLocalStore(fsys afero.Fs) (*LocalStore, error) {
	if err := fsys.MkdirAll("/", 0o755); err != nil {
		return nil, fmt.Errorf("prepare upload dir: %w", err)
	}
	return &LocalStore{fs: fsys}, nil
}

func (s *LocalStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if err := afero.WriteReader(s.fs, "/"+name, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fs.Open("/" + name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove("/" + name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) List(_ context.Context) ([]models.StoredImage, error) {
	entries, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	images := make([]models.StoredImage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		images = append(images, models.StoredImage{
			Name:       entry.Name(),
			SizeBytes:  entry.Size(),
			ModifiedAt: entry.ModTime(),
		})
	}
	return images, nil
}
