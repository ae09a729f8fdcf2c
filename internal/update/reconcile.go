package update

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Batch error classification. Both wrap the underlying cause.
var (
	// ErrDownload marks an item whose new archive could not be fetched.
	ErrDownload = errors.New("download failed")
	// ErrDeleteStale marks an item that updated but left its replaced
	// archive behind.
	ErrDeleteStale = errors.New("failed to delete stale file")
)

// Store abstracts the instance directory mutations the reconciler performs.
type Store interface {
	// Download fetches url into the instance directory under filename.
	Download(ctx context.Context, url, filename string) error
	// Remove deletes the named mod file.
	Remove(filename string) error
}

// Result summarizes a reconciliation batch. Applied lists the descriptors
// that updated; Errors holds one entry per failed download plus one per
// stale file left behind.
type Result struct {
	Updated int
	Failed  int
	Applied []Descriptor
	Errors  []error
}

// Reconciler applies pending updates strictly one at a time. Sequential on
// purpose: mod archives are large and partially updated directories are
// easier to reason about when at most one item is in flight.
type Reconciler struct {
	store Store
	log   *zap.Logger
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, log: logger}
}

// Apply downloads each descriptor's target and, when the update changed the
// filename, deletes the replaced archive. A failed download is counted and
// skipped, never retried here, and never stops the rest of the batch. A
// failed stale delete still counts the item as updated. Context
// cancellation stops the batch between items; completed items stand.
func (r *Reconciler) Apply(ctx context.Context, descs []Descriptor) Result {
	var res Result
	for _, d := range descs {
		if ctx.Err() != nil {
			r.log.Info("reconciliation cancelled",
				zap.Int("updated", res.Updated),
				zap.Int("remaining", len(descs)-res.Updated-res.Failed))
			break
		}

		if err := r.store.Download(ctx, d.Latest.URL, d.Latest.FileName); err != nil {
			r.log.Error("update failed",
				zap.String("file", d.FileName),
				zap.String("target", d.Latest.FileName),
				zap.Error(err))
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w: %w", d.FileName, ErrDownload, err))
			continue
		}

		if d.Latest.FileName != d.FileName {
			if err := r.store.Remove(d.FileName); err != nil {
				// The new archive is already in place; only the old one
				// lingers.
				r.log.Warn("stale file left behind",
					zap.String("file", d.FileName), zap.Error(err))
				res.Errors = append(res.Errors, fmt.Errorf("%s: %w: %w", d.FileName, ErrDeleteStale, err))
			}
		}

		r.log.Info("updated",
			zap.String("file", d.FileName),
			zap.String("to", d.Latest.FileName),
			zap.String("version", d.Latest.VersionNumber))
		res.Updated++
		res.Applied = append(res.Applied, d)
	}
	return res
}
