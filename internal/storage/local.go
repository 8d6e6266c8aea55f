package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore escribe en disco bajo root/profile-photos. Las referencias tienen
// la forma /profile-photos/<nombre> y se sirven como archivos estaticos.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	dir := filepath.Join(root, ProfilePhotoPrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Dir es el directorio que debe exponerse en /profile-photos.
func (s *LocalStore) Dir() string {
	return filepath.Join(s.root, ProfilePhotoPrefix)
}

func (s *LocalStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, ext, err := checkType(data, contentType)
	if err != nil {
		return "", err
	}
	name := newObjectName(ext)
	if err := os.WriteFile(filepath.Join(s.Dir(), name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return "/" + path.Join(ProfilePhotoPrefix, name), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := s.nameFromRef(ref)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.Dir(), name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func (s *LocalStore) nameFromRef(ref string) (string, error) {
	prefix := "/" + ProfilePhotoPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", ErrInvalidRef
	}
	name := strings.TrimPrefix(ref, prefix)
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidRef
	}
	return name, nil
}
