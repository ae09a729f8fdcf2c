package integration

import (
	"path/filepath"
	"testing"

	"github.com/modwarden/modwarden/internal/catalog"
	"github.com/modwarden/modwarden/internal/channel"
	"github.com/modwarden/modwarden/internal/engine"
	"github.com/modwarden/modwarden/internal/instance"
	mwtest "github.com/modwarden/modwarden/testing"
)

// TestEnvironment is a real mods directory wired to a mock catalog through
// one engine.
type TestEnvironment struct {
	T       *testing.T
	ModsDir string
	Catalog *mwtest.MockCatalogServer
	Engine  *engine.Engine
}

// SetupTestEnvironment builds a fabric 1.20.1 instance on the release
// channel.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	return SetupTestEnvironmentOnChannel(t, channel.Release)
}

// SetupTestEnvironmentOnChannel is SetupTestEnvironment with an explicit
// stability channel.
func SetupTestEnvironmentOnChannel(t *testing.T, ch channel.Channel) *TestEnvironment {
	t.Helper()

	dir := mwtest.TempDir(t)
	mock := mwtest.NewMockCatalogServer(t)

	inst, err := instance.Open(dir, instance.LoaderFabric, "1.20.1")
	if err != nil {
		t.Fatalf("failed to open instance: %v", err)
	}

	client := catalog.NewClient(catalog.Config{
		BaseURL:   mock.URL,
		UserAgent: "modwarden-integration",
	})
	eng := engine.New(engine.Config{
		Instance: inst,
		Catalog:  client,
		Channel:  ch,
	})

	return &TestEnvironment{T: t, ModsDir: dir, Catalog: mock, Engine: eng}
}

// InstallMod drops a fake archive into the mods dir and returns its path.
func (e *TestEnvironment) InstallMod(name string) string {
	e.T.Helper()
	return mwtest.WriteModArchive(e.T, e.ModsDir, name)
}

// RegisterProject teaches the catalog a project and its version history,
// newest first.
func (e *TestEnvironment) RegisterProject(id, slug, title string, versions ...catalog.Version) {
	e.T.Helper()
	e.Catalog.SetSearch(slug, mwtest.Project(id, slug, title))
	if err := e.Catalog.SetVersions(id, versions...); err != nil {
		e.T.Fatalf("failed to register versions for %s: %v", id, err)
	}
}

// Version builds a catalog version whose artifact URL points at the mock's
// /cdn/ namespace.
func (e *TestEnvironment) Version(id, number, versionType, filename string) catalog.Version {
	return mwtest.Version(id, number, versionType, filename, e.Catalog.FileURL("/cdn/"+filename))
}

// ServeArtifact makes the mock actually serve content for an artifact
// registered with Version.
func (e *TestEnvironment) ServeArtifact(filename, content string) {
	e.Catalog.SetFile("/cdn/"+filename, []byte(content))
}

// ModPath returns the absolute path of a mod file in the instance.
func (e *TestEnvironment) ModPath(name string) string {
	return filepath.Join(e.ModsDir, name)
}
