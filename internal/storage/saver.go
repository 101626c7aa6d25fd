// Package storage persists artifacts: to a local directory, to S3, or to
// memory for tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/imaging"
	"github.com/spherical/pdf-scanner/internal/observability"
)

// DirSaver writes artifacts as JPEG files under a directory.
type DirSaver struct {
	dir       string
	overwrite bool
	encode    imaging.EncodeOptions
	logger    *observability.Logger
}

// NewDirSaver creates the output directory if needed.
func NewDirSaver(dir string, overwrite bool, encode imaging.EncodeOptions, logger *observability.Logger) (*DirSaver, error) {
	if dir == "" {
		return nil, domain.ConfigError("output directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.IOError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &DirSaver{
		dir:       dir,
		overwrite: overwrite,
		encode:    encode,
		logger:    logger.WithComponent("dir_saver"),
	}, nil
}

// Save writes <dir>/<filename>. Without overwrite an existing file is an
// io error.
func (s *DirSaver) Save(ctx context.Context, artifact domain.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if artifact.Filename == "" || filepath.Base(artifact.Filename) != artifact.Filename {
		return domain.IOError(fmt.Sprintf("invalid artifact filename %q", artifact.Filename), nil)
	}

	data, err := imaging.JPEGBytes(artifact.Image, s.encode)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !s.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	path := filepath.Join(s.dir, artifact.Filename)
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.IOError(fmt.Sprintf("%s already exists", path), err)
		}
		return domain.IOError(fmt.Sprintf("failed to create %s", path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return domain.IOError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := f.Close(); err != nil {
		return domain.IOError(fmt.Sprintf("failed to close %s", path), err)
	}

	s.logger.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Msg("Artifact written")
	return nil
}

// Discard drops every artifact. It backs the "none" output driver.
type Discard struct{}

// Save implements domain.Saver.
func (Discard) Save(ctx context.Context, artifact domain.Artifact) error {
	return ctx.Err()
}
