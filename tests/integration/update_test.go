package integration

import (
	"context"
	"testing"

	"github.com/modwarden/modwarden/internal/channel"
	"github.com/modwarden/modwarden/internal/manifest"
	mwtest "github.com/modwarden/modwarden/testing"
)

// TestUpdate_CheckToApply walks check → confirm → apply: both updates land,
// replaced files disappear, and the published state reflects the new disk
// contents.
func TestUpdate_CheckToApply(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	env.InstallMod("sodium-fabric-0.5.8+mc1.20.1.jar")
	env.InstallMod("lithium-fabric-mc1.20.1-0.11.2.jar")

	env.RegisterProject("p-sodium", "sodium", "Sodium",
		env.Version("s2", "0.5.9", "release", "sodium-fabric-0.5.9+mc1.20.1.jar"),
		env.Version("s1", "0.5.8", "release", "sodium-fabric-0.5.8+mc1.20.1.jar"))
	env.RegisterProject("p-lithium", "lithium", "Lithium",
		env.Version("l2", "0.11.3", "release", "lithium-fabric-mc1.20.1-0.11.3.jar"),
		env.Version("l1", "0.11.2", "release", "lithium-fabric-mc1.20.1-0.11.2.jar"))
	env.ServeArtifact("sodium-fabric-0.5.9+mc1.20.1.jar", "sodium 0.5.9")
	env.ServeArtifact("lithium-fabric-mc1.20.1-0.11.3.jar", "lithium 0.11.3")

	ctx := context.Background()
	if _, err := env.Engine.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	descs, err := env.Engine.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("Check() returned %d descriptors, want 2", len(descs))
	}

	res, err := env.Engine.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Updated != 2 || res.Failed != 0 {
		t.Fatalf("Apply() = %d updated %d failed, want 2/0", res.Updated, res.Failed)
	}

	mwtest.AssertFileNotExists(t, env.ModPath("sodium-fabric-0.5.8+mc1.20.1.jar"))
	mwtest.AssertFileNotExists(t, env.ModPath("lithium-fabric-mc1.20.1-0.11.2.jar"))
	mwtest.AssertFileContent(t, env.ModPath("sodium-fabric-0.5.9+mc1.20.1.jar"), "sodium 0.5.9")
	mwtest.AssertFileContent(t, env.ModPath("lithium-fabric-mc1.20.1-0.11.3.jar"), "lithium 0.11.3")

	// The post-apply refresh resolves the new files to the new versions.
	for _, id := range env.Engine.Identities() {
		switch id.Name {
		case "sodium-fabric-0.5.9+mc1.20.1.jar":
			if id.CurrentVersionID != "s2" {
				t.Errorf("sodium resolved to %q, want s2", id.CurrentVersionID)
			}
		case "lithium-fabric-mc1.20.1-0.11.3.jar":
			if id.CurrentVersionID != "l2" {
				t.Errorf("lithium resolved to %q, want l2", id.CurrentVersionID)
			}
		default:
			t.Errorf("unexpected identity %q after apply", id.Name)
		}
	}

	// A fresh check finds nothing left to do.
	descs, err = env.Engine.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(descs) != 0 {
		t.Errorf("Check() after apply returned %d descriptors, want 0", len(descs))
	}
}

// TestUpdate_PartialFailure applies a batch where one download 404s: the
// healthy update lands, the failed mod keeps its old archive untouched.
func TestUpdate_PartialFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	env.InstallMod("sodium-fabric-0.5.8+mc1.20.1.jar")
	env.InstallMod("lithium-fabric-mc1.20.1-0.11.2.jar")

	env.RegisterProject("p-sodium", "sodium", "Sodium",
		env.Version("s2", "0.5.9", "release", "sodium-fabric-0.5.9+mc1.20.1.jar"),
		env.Version("s1", "0.5.8", "release", "sodium-fabric-0.5.8+mc1.20.1.jar"))
	env.RegisterProject("p-lithium", "lithium", "Lithium",
		env.Version("l2", "0.11.3", "release", "lithium-fabric-mc1.20.1-0.11.3.jar"),
		env.Version("l1", "0.11.2", "release", "lithium-fabric-mc1.20.1-0.11.2.jar"))
	// Only sodium's new artifact is actually served.
	env.ServeArtifact("sodium-fabric-0.5.9+mc1.20.1.jar", "sodium 0.5.9")

	ctx := context.Background()
	if _, err := env.Engine.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, err := env.Engine.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	res, err := env.Engine.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Updated != 1 || res.Failed != 1 {
		t.Fatalf("Apply() = %d updated %d failed, want 1/1", res.Updated, res.Failed)
	}
	if len(res.Applied) != 1 || res.Applied[0].Latest.VersionID != "s2" {
		t.Errorf("Applied = %+v, want just the sodium update", res.Applied)
	}

	mwtest.AssertFileExists(t, env.ModPath("lithium-fabric-mc1.20.1-0.11.2.jar"))
	mwtest.AssertFileNotExists(t, env.ModPath("lithium-fabric-mc1.20.1-0.11.3.jar"))
	mwtest.AssertFileNotExists(t, env.ModPath("sodium-fabric-0.5.8+mc1.20.1.jar"))
	mwtest.AssertFileContent(t, env.ModPath("sodium-fabric-0.5.9+mc1.20.1.jar"), "sodium 0.5.9")
}

// TestUpdate_DuplicateFilenameResolvesNewest covers projects that reuse one
// artifact name across versions: filename matching cannot tell the builds
// apart, so the file resolves to the newest and no spurious update fires.
func TestUpdate_DuplicateFilenameResolvesNewest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	env.InstallMod("sodium.jar")

	env.RegisterProject("p-sodium", "sodium", "Sodium",
		env.Version("s2", "0.5.9", "release", "sodium.jar"),
		env.Version("s1", "0.5.8", "release", "sodium.jar"))

	ctx := context.Background()
	ids, err := env.Engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(ids) != 1 || ids[0].CurrentVersionID != "s2" {
		t.Fatalf("identities = %+v, want sodium.jar resolved to the newest build", ids)
	}

	descs, err := env.Engine.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(descs) != 0 {
		t.Errorf("Check() returned %d descriptors, want 0", len(descs))
	}
	mwtest.AssertFileExists(t, env.ModPath("sodium.jar"))
}

// TestUpdate_ChannelGating runs the same catalog state against two
// channels: a beta latest is invisible on release and visible on beta.
func TestUpdate_ChannelGating(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, tt := range []struct {
		channel     channel.Channel
		wantUpdates int
	}{
		{channel.Release, 0},
		{channel.Beta, 1},
	} {
		t.Run(tt.channel.String(), func(t *testing.T) {
			env := SetupTestEnvironmentOnChannel(t, tt.channel)
			env.InstallMod("sodium-fabric-0.5.8+mc1.20.1.jar")
			env.RegisterProject("p-sodium", "sodium", "Sodium",
				env.Version("s2", "0.6.0-beta.1", "beta", "sodium-fabric-0.6.0-beta.1+mc1.20.1.jar"),
				env.Version("s1", "0.5.8", "release", "sodium-fabric-0.5.8+mc1.20.1.jar"))

			ctx := context.Background()
			if _, err := env.Engine.Refresh(ctx); err != nil {
				t.Fatalf("Refresh() error = %v", err)
			}
			descs, err := env.Engine.Check(ctx)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if len(descs) != tt.wantUpdates {
				t.Errorf("Check() on %s returned %d descriptors, want %d",
					tt.channel, len(descs), tt.wantUpdates)
			}
		})
	}
}

// TestUpdate_DisabledModNeverUpdates installs a disabled mod with a newer
// version available and expects detection to pass it over.
func TestUpdate_DisabledModNeverUpdates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	env.InstallMod("sodium-fabric-0.5.8+mc1.20.1.jar.disabled")
	env.RegisterProject("p-sodium", "sodium", "Sodium",
		env.Version("s2", "0.5.9", "release", "sodium-fabric-0.5.9+mc1.20.1.jar"),
		env.Version("s1", "0.5.8", "release", "sodium-fabric-0.5.8+mc1.20.1.jar"))

	ctx := context.Background()
	if _, err := env.Engine.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	descs, err := env.Engine.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(descs) != 0 {
		t.Errorf("Check() returned %d descriptors for a disabled mod, want 0", len(descs))
	}
}

// TestUpdate_ManifestTracksApply verifies the manifest on disk follows the
// directory through an update.
func TestUpdate_ManifestTracksApply(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	env.InstallMod("sodium-fabric-0.5.8+mc1.20.1.jar")
	env.RegisterProject("p-sodium", "sodium", "Sodium",
		env.Version("s2", "0.5.9", "release", "sodium-fabric-0.5.9+mc1.20.1.jar"),
		env.Version("s1", "0.5.8", "release", "sodium-fabric-0.5.8+mc1.20.1.jar"))
	env.ServeArtifact("sodium-fabric-0.5.9+mc1.20.1.jar", "sodium 0.5.9")

	ctx := context.Background()
	if _, err := env.Engine.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, err := env.Engine.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if _, err := env.Engine.Apply(ctx); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	man, err := manifest.Load(env.ModsDir)
	if err != nil {
		t.Fatalf("failed to load manifest: %v", err)
	}
	if len(man.Mods) != 1 || man.Mods[0].FileName != "sodium-fabric-0.5.9+mc1.20.1.jar" {
		t.Errorf("manifest mods = %+v, want the updated filename", man.Mods)
	}
	if man.Loader != "fabric" || man.GameVersion != "1.20.1" {
		t.Errorf("manifest settings = %q/%q, want fabric/1.20.1", man.Loader, man.GameVersion)
	}
}
