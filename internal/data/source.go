package data

import (
	"context"
	"path/filepath"

	"energy-traffic-light/internal/model"
)

// Source fetches one raw (unsorted, untruncated) series.
type Source interface {
	Fetch(ctx context.Context, kind model.SeriesKind) ([]model.PowerLoadEntry, error)
}

// FileSource reads series from {Dir}/{kind}_power_load.json.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	if dir == "" {
		dir = DefaultDataDir()
	}
	return &FileSource{Dir: dir}
}

func (s *FileSource) Fetch(ctx context.Context, kind model.SeriesKind) ([]model.PowerLoadEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadSeriesJSON(filepath.Join(s.Dir, FileName(kind)))
}

// StaticSource serves in-memory series; used by tests and the generator preview.
type StaticSource map[model.SeriesKind][]model.PowerLoadEntry

func (s StaticSource) Fetch(_ context.Context, kind model.SeriesKind) ([]model.PowerLoadEntry, error) {
	out := make([]model.PowerLoadEntry, len(s[kind]))
	copy(out, s[kind])
	return out, nil
}
