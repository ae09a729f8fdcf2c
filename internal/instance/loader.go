package instance

import "fmt"

// Loader is the mod-loading runtime flavor an instance is configured to use.
// It constrains which catalog versions are installable.
type Loader string

const (
	LoaderFabric   Loader = "fabric"
	LoaderForge    Loader = "forge"
	LoaderQuilt    Loader = "quilt"
	LoaderNeoForge Loader = "neoforge"
	LoaderVanilla  Loader = "vanilla"
)

var knownLoaders = map[Loader]bool{
	LoaderFabric:   true,
	LoaderForge:    true,
	LoaderQuilt:    true,
	LoaderNeoForge: true,
	LoaderVanilla:  true,
}

// ParseLoader validates a loader name.
func ParseLoader(s string) (Loader, error) {
	l := Loader(s)
	if !knownLoaders[l] {
		return "", fmt.Errorf("unknown loader %q (valid: fabric, forge, quilt, neoforge, vanilla)", s)
	}
	return l, nil
}

// CatalogEnabled reports whether the catalog serves versions for this
// loader. Vanilla instances have no moddable surface, so identity
// enrichment and update detection are skipped for them.
func (l Loader) CatalogEnabled() bool {
	return knownLoaders[l] && l != LoaderVanilla
}

func (l Loader) String() string {
	return string(l)
}
