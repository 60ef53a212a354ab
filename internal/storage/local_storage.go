package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/spf13/afero"
)

// LocalServePath is the route prefix under which the API serves local objects
const LocalServePath = "/blobs"

// LocalStorage keeps objects on an afero filesystem and hands out URLs that
// the API itself serves. Intended for development and tests.
type LocalStorage struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalStorage stores objects on fs. publicBaseURL is the externally visible
// address of the API; objects are reachable at publicBaseURL + LocalServePath.
func NewLocalStorage(fs afero.Fs, publicBaseURL string) *LocalStorage {
	return &LocalStorage{
		fs:      fs,
		baseURL: joinURL(publicBaseURL, LocalServePath[1:]),
	}
}

// NewLocalDirStorage roots a LocalStorage at dir on the OS filesystem.
func NewLocalDirStorage(dir string, publicBaseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return NewLocalStorage(afero.NewBasePathFs(afero.NewOsFs(), dir), publicBaseURL), nil
}

func (s *LocalStorage) PutObject(_ context.Context, params *PutObjectParams) (*PutObjectResponse, error) {
	if !ValidateKey(params.Key) {
		return nil, ErrInvalidKey
	}

	name := "/" + params.Key
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return nil, fmt.Errorf("create object dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, name, params.Body, 0o644); err != nil {
		return nil, fmt.Errorf("write object: %w", err)
	}

	return &PutObjectResponse{
		Key:  params.Key,
		URL:  joinURL(s.baseURL, params.Key),
		Size: int64(len(params.Body)),
	}, nil
}

// FileSystem exposes the stored objects for serving under LocalServePath.
func (s *LocalStorage) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir("/")
}
