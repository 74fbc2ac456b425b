// Package source resolves the default input documents: a local copy when one
// exists, otherwise a download from a fixed location.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/viant/afs"
)

// ErrUnavailable is returned when neither a local copy nor a URL is set.
var ErrUnavailable = errors.New("no local copy and no URL configured")

// Content is fetched raw document text and where it came from.
type Content struct {
	Data   []byte
	Origin string
}

// Resolver fetches one default input.
type Resolver struct {
	// Local is read when it names an existing regular file.
	Local string

	// URL is downloaded otherwise. Any scheme afs supports works
	// (https, file, mem, ...).
	URL string

	FS     afero.Fs
	Remote afs.Service
}

// New creates a resolver over the given filesystem and remote storage.
// A nil remote uses a default afs service.
func New(fs afero.Fs, remote afs.Service, local, url string) *Resolver {
	if remote == nil {
		remote = afs.New()
	}
	return &Resolver{
		Local:  local,
		URL:    url,
		FS:     fs,
		Remote: remote,
	}
}

// Fetch returns the local copy if present, else the downloaded content.
func (r *Resolver) Fetch(ctx context.Context) (*Content, error) {
	if r.Local != "" {
		if info, err := r.FS.Stat(r.Local); err == nil && info.Mode().IsRegular() {
			data, err := afero.ReadFile(r.FS, r.Local)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", r.Local, err)
			}
			return &Content{Data: data, Origin: r.Local}, nil
		}
	}

	if r.URL == "" {
		if r.Local != "" {
			return nil, fmt.Errorf("%s: %w", r.Local, ErrUnavailable)
		}
		return nil, ErrUnavailable
	}

	data, err := r.Remote.DownloadWithURL(ctx, r.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", r.URL, err)
	}
	return &Content{Data: data, Origin: r.URL}, nil
}
