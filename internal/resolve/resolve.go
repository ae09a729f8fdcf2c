// Package resolve turns opaque installed mod files into catalog-backed
// identities: normalize the filename to a searchable slug, match a catalog
// project, and work out which published version is the one on disk. Every
// stage can fail for an individual file; a failure degrades that file's
// record to its local fields and never removes it.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/modwarden/modwarden/internal/catalog"
	"github.com/modwarden/modwarden/internal/instance"
	"github.com/modwarden/modwarden/internal/modfile"
)

// Resolution failures, all absorbed per-file during aggregation.
var (
	// ErrAmbiguous means the filename reduced to an empty slug; there is
	// nothing meaningful to search for.
	ErrAmbiguous = errors.New("filename too ambiguous to search")
	// ErrNoMatch means no search hit passed the exact-normalized-equality
	// rule. Near misses are deliberately not attached: wrong metadata on a
	// user's mod is worse than none.
	ErrNoMatch = errors.New("no exact catalog match")
	// ErrVersionResolution means the version listing was unavailable or
	// empty for the instance's loader and game version.
	ErrVersionResolution = errors.New("failed to resolve versions")
)

// Catalog is the slice of the catalog client the resolver needs.
// *catalog.Client satisfies it; tests substitute fakes.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.Project, error)
	Versions(ctx context.Context, projectID string, loaders, gameVersions []string) ([]catalog.Version, error)
}

// Identity is the merged local + catalog view of one installed mod. The
// embedded ModFile fields are always present; the catalog fields stay zero
// when any resolution stage failed for the file.
type Identity struct {
	instance.ModFile

	ProjectID            string
	CurrentVersionID     string
	CurrentVersionNumber string
	Title                string
	Description          string
	IconURL              string
	Author               string
	Downloads            int64
}

// Resolved reports whether the file was matched to a catalog project.
func (id Identity) Resolved() bool {
	return id.ProjectID != ""
}

// Config holds resolver construction options.
type Config struct {
	Catalog Catalog
	// Concurrency bounds the per-file enrichment fan-out. Defaults to 4.
	Concurrency int
	// SearchLimit caps how many search hits are considered per file.
	// Defaults to 20.
	SearchLimit int
	Logger      *zap.Logger
}

// Resolver runs the normalize → match → resolve pipeline over installed
// files.
type Resolver struct {
	catalog     Catalog
	concurrency int
	searchLimit int
	log         *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 20
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Resolver{
		catalog:     cfg.Catalog,
		concurrency: cfg.Concurrency,
		searchLimit: cfg.SearchLimit,
		log:         cfg.Logger,
	}
}

// Enrich resolves an identity for every file, fanned out under the
// configured bound, and returns them in input order. Per-file failures are
// absorbed: the identity keeps its local fields. The error is non-nil only
// when ctx was cancelled; callers must then discard the partial slice
// instead of publishing it.
func (r *Resolver) Enrich(ctx context.Context, inst *instance.Instance, files []instance.ModFile) ([]Identity, error) {
	ids := make([]Identity, len(files))

	if !inst.Loader.CatalogEnabled() {
		for i, f := range files {
			ids[i] = Identity{ModFile: f}
		}
		return ids, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			id, err := r.enrich(gctx, inst, f)
			ids[i] = id
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return ids, err
	}
	return ids, nil
}

// enrich runs the pipeline for one file. The returned error is non-nil only
// for context cancellation; every other failure is logged and absorbed.
func (r *Resolver) enrich(ctx context.Context, inst *instance.Instance, f instance.ModFile) (Identity, error) {
	id := Identity{ModFile: f}

	slug := modfile.Normalize(f.Name)
	if slug == "" {
		r.log.Debug("skipping enrichment", zap.String("file", f.Name), zap.Error(ErrAmbiguous))
		return id, nil
	}

	project, err := r.matchProject(ctx, slug)
	if err != nil {
		if canceled(err) {
			return id, err
		}
		r.log.Debug("no catalog identity", zap.String("file", f.Name), zap.String("slug", slug), zap.Error(err))
		return id, nil
	}

	id.ProjectID = project.ID
	id.Title = project.Title
	id.Description = project.Description
	id.IconURL = project.IconURL
	id.Author = project.Author
	id.Downloads = project.Downloads

	current, err := r.installedVersion(ctx, project.ID, inst, f.Name)
	if err != nil {
		if canceled(err) {
			return id, err
		}
		// The project identity stands; only update detection is lost.
		r.log.Debug("version resolution failed", zap.String("file", f.Name), zap.Error(err))
		return id, nil
	}
	if current != nil {
		id.CurrentVersionID = current.ID
		id.CurrentVersionNumber = current.VersionNumber
	}
	return id, nil
}

// matchProject searches the catalog for the slug and returns the first hit
// whose slug or title folds to exactly the query. No fuzzy fallback.
func (r *Resolver) matchProject(ctx context.Context, slug string) (catalog.Project, error) {
	hits, err := r.catalog.Search(ctx, slug, r.searchLimit)
	if err != nil {
		return catalog.Project{}, fmt.Errorf("failed to search catalog: %w", err)
	}

	want := foldKey(slug)
	for _, hit := range hits {
		if foldKey(hit.Slug) == want || foldKey(hit.Title) == want {
			return hit, nil
		}
	}
	return catalog.Project{}, ErrNoMatch
}

// installedVersion finds the published version whose file list carries the
// local filename, among versions compatible with the instance. A nil
// version with nil error means the file matched no published artifact;
// update detection must then skip the mod rather than guess.
func (r *Resolver) installedVersion(ctx context.Context, projectID string, inst *instance.Instance, filename string) (*catalog.Version, error) {
	versions, err := r.catalog.Versions(ctx, projectID, []string{inst.Loader.String()}, []string{inst.GameVersion()})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersionResolution, err)
	}
	if len(versions) == 0 {
		return nil, ErrVersionResolution
	}
	for i := range versions {
		for _, file := range versions[i].Files {
			if file.Filename == filename {
				return &versions[i], nil
			}
		}
	}
	return nil, nil
}

// foldKey lower-cases s and removes separators and whitespace so that
// "Iron Chests", "iron-chests" and "iron_chests" all compare equal.
func foldKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '.', '_', '+', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
