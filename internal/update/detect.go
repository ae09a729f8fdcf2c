// Package update detects available catalog updates for resolved mods and
// applies them to the instance directory, one item at a time.
package update

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/modwarden/modwarden/internal/catalog"
	"github.com/modwarden/modwarden/internal/channel"
	"github.com/modwarden/modwarden/internal/instance"
	"github.com/modwarden/modwarden/internal/modver"
	"github.com/modwarden/modwarden/internal/resolve"
)

// Target describes the version an update would install.
type Target struct {
	VersionID     string
	VersionName   string
	VersionNumber string
	Changelog     string
	FileName      string
	URL           string
}

// Descriptor is one pending update: which installed file it replaces and
// what it installs. Descriptors are computed against a snapshot of the
// instance and must be discarded after any mutation.
type Descriptor struct {
	FileName             string
	ProjectID            string
	CurrentVersionID     string
	CurrentVersionNumber string
	Latest               Target
}

// VersionLister is the slice of the catalog client the detector needs.
type VersionLister interface {
	Versions(ctx context.Context, projectID string, loaders, gameVersions []string) ([]catalog.Version, error)
}

// DetectorConfig holds detector construction options.
type DetectorConfig struct {
	Catalog VersionLister
	// Channel gates which release types count as update candidates.
	Channel channel.Channel
	// Concurrency bounds the per-mod check fan-out. Defaults to 2.
	Concurrency int
	Logger      *zap.Logger
}

// Detector computes pending updates for a set of resolved identities.
type Detector struct {
	catalog     VersionLister
	channel     channel.Channel
	concurrency int
	log         *zap.Logger
}

// NewDetector creates a detector.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.Channel == "" {
		cfg.Channel = channel.Release
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Detector{
		catalog:     cfg.Catalog,
		channel:     cfg.Channel,
		concurrency: cfg.Concurrency,
		log:         cfg.Logger,
	}
}

// Detect returns a descriptor for every enabled, fully resolved identity
// whose newest channel-allowed version differs from the installed one.
// Disabled and unresolved mods are skipped. Per-mod check failures are
// logged and absorbed so one unreachable project cannot hide updates for
// the rest; the error is non-nil only when ctx was cancelled. Results are
// sorted by filename.
func (d *Detector) Detect(ctx context.Context, inst *instance.Instance, ids []resolve.Identity) ([]Descriptor, error) {
	if !inst.Loader.CatalogEnabled() {
		d.log.Debug("loader has no catalog coverage, skipping update checks",
			zap.String("loader", inst.Loader.String()))
		return nil, nil
	}
	loaders := []string{inst.Loader.String()}
	games := []string{inst.GameVersion()}

	var (
		mu  sync.Mutex
		out []Descriptor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, id := range ids {
		if id.Disabled || id.ProjectID == "" || id.CurrentVersionID == "" {
			continue
		}
		g.Go(func() error {
			desc, err := d.check(gctx, id, loaders, games)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				d.log.Warn("update check failed", zap.String("file", id.Name), zap.Error(err))
				return nil
			}
			if desc != nil {
				mu.Lock()
				out = append(out, *desc)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out, nil
}

// check decides whether one identity has an update. A nil descriptor with
// nil error means the mod is current, gated out by channel, or has no
// usable download target.
func (d *Detector) check(ctx context.Context, id resolve.Identity, loaders, games []string) (*Descriptor, error) {
	versions, err := d.catalog.Versions(ctx, id.ProjectID, loaders, games)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	latest, ok := d.latestAllowed(versions)
	if !ok {
		return nil, nil
	}
	if latest.ID == id.CurrentVersionID {
		return nil, nil
	}

	// The listing order is the collaborator's contract, but a head entry
	// that parses as older than the installed version is not an update.
	if id.CurrentVersionNumber != "" && modver.Regression(id.CurrentVersionNumber, latest.VersionNumber) {
		d.log.Warn("catalog order contradicts version numbers, skipping",
			zap.String("file", id.Name),
			zap.String("installed", id.CurrentVersionNumber),
			zap.String("candidate", latest.VersionNumber))
		return nil, nil
	}

	file, ok := latest.PrimaryFile()
	if !ok {
		d.log.Warn("latest version publishes no files",
			zap.String("file", id.Name), zap.String("version", latest.ID))
		return nil, nil
	}

	return &Descriptor{
		FileName:             id.Name,
		ProjectID:            id.ProjectID,
		CurrentVersionID:     id.CurrentVersionID,
		CurrentVersionNumber: id.CurrentVersionNumber,
		Latest: Target{
			VersionID:     latest.ID,
			VersionName:   latest.Name,
			VersionNumber: latest.VersionNumber,
			Changelog:     latest.Changelog,
			FileName:      file.Filename,
			URL:           file.URL,
		},
	}, nil
}

// latestAllowed returns the first (newest) version the channel admits.
func (d *Detector) latestAllowed(versions []catalog.Version) (catalog.Version, bool) {
	for _, v := range versions {
		if d.channel.Allows(v.VersionType) {
			return v, true
		}
	}
	return catalog.Version{}, false
}
