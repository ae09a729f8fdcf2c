// Package engine coordinates the scan → resolve → detect → reconcile
// lifecycle for one instance. It owns the published identity snapshot and
// the pending update set, and keeps both consistent across concurrent
// refreshes and user mutations.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/modwarden/modwarden/internal/channel"
	"github.com/modwarden/modwarden/internal/instance"
	"github.com/modwarden/modwarden/internal/manifest"
	"github.com/modwarden/modwarden/internal/modfile"
	"github.com/modwarden/modwarden/internal/resolve"
	"github.com/modwarden/modwarden/internal/update"
)

// Config holds engine construction options.
type Config struct {
	Instance *instance.Instance
	Catalog  resolve.Catalog
	// Channel gates which release types update detection considers.
	Channel channel.Channel
	// Concurrency bounds identity enrichment. Defaults to 4.
	Concurrency int
	// CheckConcurrency bounds update checking. Defaults to 2.
	CheckConcurrency int
	Logger           *zap.Logger
}

// Engine is safe for concurrent use: a single mutex guards the published
// state, and a generation counter keeps a stale refresh from clobbering a
// newer one.
type Engine struct {
	inst       *instance.Instance
	resolver   *resolve.Resolver
	detector   *update.Detector
	reconciler *update.Reconciler
	channel    channel.Channel
	log        *zap.Logger

	mu         sync.Mutex
	generation uint64
	identities []resolve.Identity
	pending    []update.Descriptor
	man        *manifest.File
}

// New creates an engine for the instance. The manifest, if present, is
// loaded eagerly so settings recorded by earlier runs carry over; an
// unreadable manifest is replaced rather than fatal, since the directory
// scan is the source of truth anyway.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	man, err := manifest.Load(cfg.Instance.Dir)
	if err != nil {
		cfg.Logger.Warn("unreadable manifest, starting fresh", zap.Error(err))
		man = &manifest.File{SchemaVersion: manifest.SchemaVersion}
	}
	man.RecordSettings(cfg.Instance.Loader.String(), cfg.Instance.Version, cfg.Channel.String())

	e := &Engine{
		inst: cfg.Instance,
		resolver: resolve.NewResolver(resolve.Config{
			Catalog:     cfg.Catalog,
			Concurrency: cfg.Concurrency,
			Logger:      cfg.Logger,
		}),
		detector: update.NewDetector(update.DetectorConfig{
			Catalog:     cfg.Catalog,
			Channel:     cfg.Channel,
			Concurrency: cfg.CheckConcurrency,
			Logger:      cfg.Logger,
		}),
		channel: cfg.Channel,
		log:     cfg.Logger,
		man:     man,
	}
	e.reconciler = update.NewReconciler(&modStore{inst: cfg.Instance}, cfg.Logger)
	return e
}

// Refresh rescans the directory, re-resolves every identity from scratch,
// and publishes the result. Stale refreshes lose: when another refresh
// started after this one, the newer snapshot wins no matter which finishes
// first. Publishing also drops pending descriptors, which were computed
// against the previous snapshot.
func (e *Engine) Refresh(ctx context.Context) ([]resolve.Identity, error) {
	gen := e.nextGeneration()

	files, err := e.inst.List()
	if err != nil {
		return nil, err
	}
	e.syncManifest(files)

	ids, err := e.resolver.Enrich(ctx, e.inst, files)
	if err != nil {
		return nil, err
	}
	if !e.publish(gen, ids) {
		e.log.Debug("refresh superseded, dropping snapshot", zap.Uint64("generation", gen))
	}
	return ids, nil
}

// Channel returns the stability channel the engine detects updates on.
func (e *Engine) Channel() channel.Channel {
	return e.channel
}

// Identities returns a copy of the last published snapshot.
func (e *Engine) Identities() []resolve.Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]resolve.Identity, len(e.identities))
	copy(out, e.identities)
	return out
}

// Pending returns a copy of the descriptors stored by the last Check.
func (e *Engine) Pending() []update.Descriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]update.Descriptor, len(e.pending))
	copy(out, e.pending)
	return out
}

// Check computes pending updates against the current snapshot and stores
// them for a later Apply, replacing any previous set. If a refresh lands
// while the check is in flight, the result is returned for display but not
// stored; it describes a snapshot that no longer exists.
func (e *Engine) Check(ctx context.Context) ([]update.Descriptor, error) {
	e.mu.Lock()
	gen := e.generation
	ids := make([]resolve.Identity, len(e.identities))
	copy(ids, e.identities)
	e.mu.Unlock()

	descs, err := e.detector.Detect(ctx, e.inst, ids)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.log.Debug("check superseded by refresh, not storing descriptors")
		return descs, nil
	}
	e.pending = descs
	return descs, nil
}

// Apply reconciles the pending set sequentially, then re-resolves the
// directory no matter how the batch went: the published state must reflect
// what is actually on disk, and the pending set is spent either way.
func (e *Engine) Apply(ctx context.Context) (update.Result, error) {
	e.mu.Lock()
	descs := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(descs) == 0 {
		return update.Result{}, nil
	}

	res := e.reconciler.Apply(ctx, descs)

	if _, err := e.Refresh(ctx); err != nil {
		e.log.Warn("post-update refresh failed", zap.Error(err))
	}
	return res, nil
}

// Toggle flips one mod between enabled and disabled and returns the new
// enabled state. The snapshot is re-resolved afterwards; the rename alone
// invalidates the identity list and any pending descriptors.
func (e *Engine) Toggle(ctx context.Context, name string) (bool, error) {
	base := modfile.EnabledName(name)

	files, err := e.inst.List()
	if err != nil {
		return false, err
	}
	var current *instance.ModFile
	for i := range files {
		if files[i].Name == base {
			current = &files[i]
			break
		}
	}
	if current == nil {
		return false, fmt.Errorf("no mod named %q", base)
	}

	enable := current.Disabled
	if err := e.inst.SetEnabled(base, enable); err != nil {
		return false, err
	}

	e.mu.Lock()
	e.man.SetDisabled(base, !enable)
	saveErr := e.man.Save(e.inst.Dir)
	e.mu.Unlock()
	if saveErr != nil {
		e.log.Warn("failed to save manifest", zap.Error(saveErr))
	}

	if _, err := e.Refresh(ctx); err != nil {
		e.log.Warn("post-toggle refresh failed", zap.Error(err))
	}
	return enable, nil
}

// Remove deletes a mod file in whichever form it exists on disk, then
// re-resolves.
func (e *Engine) Remove(ctx context.Context, name string) error {
	base := modfile.EnabledName(name)
	if err := e.inst.Remove(base); err != nil {
		return err
	}

	e.mu.Lock()
	e.man.Remove(base)
	saveErr := e.man.Save(e.inst.Dir)
	e.mu.Unlock()
	if saveErr != nil {
		e.log.Warn("failed to save manifest", zap.Error(saveErr))
	}

	if _, err := e.Refresh(ctx); err != nil {
		e.log.Warn("post-remove refresh failed", zap.Error(err))
	}
	return nil
}

func (e *Engine) nextGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// publish installs the snapshot unless a newer refresh has started.
func (e *Engine) publish(gen uint64, ids []resolve.Identity) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return false
	}
	e.identities = ids
	e.pending = nil
	return true
}

// syncManifest records the scan and saves. Manifest trouble never fails an
// operation; the directory is the source of truth.
func (e *Engine) syncManifest(files []instance.ModFile) {
	entries := make([]manifest.Entry, len(files))
	for i, f := range files {
		entries[i] = manifest.Entry{FileName: f.Name, SizeBytes: f.SizeBytes, Disabled: f.Disabled}
	}

	e.mu.Lock()
	e.man.Sync(entries)
	err := e.man.Save(e.inst.Dir)
	e.mu.Unlock()
	if err != nil {
		e.log.Warn("failed to save manifest", zap.Error(err))
	}
}
