package engine

import (
	"context"

	"github.com/modwarden/modwarden/internal/download"
	"github.com/modwarden/modwarden/internal/instance"
)

// modStore adapts the instance directory to the reconciler's store. Target
// paths are validated against the directory before any bytes land.
type modStore struct {
	inst *instance.Instance
}

func (s *modStore) Download(ctx context.Context, url, filename string) error {
	target, err := s.inst.Path(filename)
	if err != nil {
		return err
	}
	if _, err := download.ValidatePath(s.inst.Dir, target); err != nil {
		return err
	}
	return download.File(ctx, url, target)
}

func (s *modStore) Remove(filename string) error {
	return s.inst.Remove(filename)
}
