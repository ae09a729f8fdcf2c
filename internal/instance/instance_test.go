package instance

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func exists(t *testing.T, dir, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func TestOpenValidatesDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir, LoaderFabric, "1.20.1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := Open(filepath.Join(dir, "missing"), LoaderFabric, "1.20.1"); err == nil {
		t.Error("Open() on a missing directory must fail")
	}

	file := filepath.Join(dir, "file")
	writeFile(t, dir, "file")
	if _, err := Open(file, LoaderFabric, "1.20.1"); err == nil {
		t.Error("Open() on a plain file must fail")
	}
}

func TestGameVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.20.1", "1.20.1"},
		{"1.20", "1.20"},
		{"fabric-loader-0.15.11-1.20.1", "1.20.1"},
		{"quilt-loader-0.23.1-1.20.1", "1.20.1"},
		{"1.20.1-forge-47.2.0", "1.20.1"},
		{"neoforge-20.4.237", "20.4.237"},
		{"  1.20.1  ", "1.20.1"},
		{"snapshot-24w14a", "snapshot-24w14a"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			inst := &Instance{Version: tt.version}
			if got := inst.GameVersion(); got != tt.want {
				t.Errorf("GameVersion(%q) = %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}

func TestListScansArchives(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-mod.jar")
	writeFile(t, dir, "a-mod.jar.disabled")
	writeFile(t, dir, "old.litemod")
	writeFile(t, dir, "readme.txt")
	writeFile(t, dir, "staged.jar.part")
	writeFile(t, dir, "modwarden.json")
	if err := os.Mkdir(filepath.Join(dir, "nested.jar"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	inst, err := Open(dir, LoaderFabric, "1.20.1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	files, err := inst.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []ModFile{
		{Name: "a-mod.jar", SizeBytes: 1, Disabled: true},
		{Name: "b-mod.jar", SizeBytes: 1, Disabled: false},
		{Name: "old.litemod", SizeBytes: 1, Disabled: false},
	}
	if len(files) != len(want) {
		t.Fatalf("List() = %+v, want %d entries", files, len(want))
	}
	for i, w := range want {
		if files[i] != w {
			t.Errorf("List()[%d] = %+v, want %+v", i, files[i], w)
		}
	}
}

func TestListEnabledFormWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sodium.jar")
	writeFile(t, dir, "sodium.jar.disabled")

	inst, err := Open(dir, LoaderFabric, "1.20.1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	files, err := inst.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("List() = %+v, want the two forms collapsed", files)
	}
	if files[0].Name != "sodium.jar" || files[0].Disabled {
		t.Errorf("List()[0] = %+v, want the enabled form", files[0])
	}
}

func TestPathRejectsPathLikeNames(t *testing.T) {
	dir := t.TempDir()
	inst, err := Open(dir, LoaderFabric, "1.20.1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if p, err := inst.Path("sodium.jar"); err != nil || p != filepath.Join(dir, "sodium.jar") {
		t.Errorf("Path(sodium.jar) = %q, %v", p, err)
	}

	for _, name := range []string{"", "../evil.jar", "sub/evil.jar", "/abs/evil.jar"} {
		if _, err := inst.Path(name); err == nil {
			t.Errorf("Path(%q) must be rejected", name)
		}
	}
}

func TestSetEnabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sodium.jar")
	inst, err := Open(dir, LoaderFabric, "1.20.1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := inst.SetEnabled("sodium.jar", false); err != nil {
		t.Fatalf("SetEnabled(false) error = %v", err)
	}
	if !exists(t, dir, "sodium.jar.disabled") || exists(t, dir, "sodium.jar") {
		t.Fatal("disable must rename to the disabled form")
	}

	// Idempotent: disabling again is a no-op.
	if err := inst.SetEnabled("sodium.jar", false); err != nil {
		t.Fatalf("SetEnabled(false) again error = %v", err)
	}

	// The disabled-form name addresses the same mod.
	if err := inst.SetEnabled("sodium.jar.disabled", true); err != nil {
		t.Fatalf("SetEnabled(true) error = %v", err)
	}
	if !exists(t, dir, "sodium.jar") || exists(t, dir, "sodium.jar.disabled") {
		t.Fatal("enable must restore the original name")
	}

	if err := inst.SetEnabled("sodium.jar", true); err != nil {
		t.Fatalf("SetEnabled(true) again error = %v", err)
	}

	if err := inst.SetEnabled("missing.jar", false); err == nil {
		t.Error("SetEnabled on a missing file must fail")
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "enabled.jar")
	writeFile(t, dir, "disabled.jar.disabled")
	inst, err := Open(dir, LoaderFabric, "1.20.1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := inst.Remove("enabled.jar"); err != nil {
		t.Fatalf("Remove(enabled) error = %v", err)
	}
	if exists(t, dir, "enabled.jar") {
		t.Error("enabled file still on disk")
	}

	// The enabled-form name finds the disabled file.
	if err := inst.Remove("disabled.jar"); err != nil {
		t.Fatalf("Remove(disabled) error = %v", err)
	}
	if exists(t, dir, "disabled.jar.disabled") {
		t.Error("disabled file still on disk")
	}

	if err := inst.Remove("missing.jar"); err == nil {
		t.Error("Remove on a missing file must fail")
	}

	if err := inst.Remove("../evil.jar"); err == nil {
		t.Error("Remove must reject path-like names")
	}
}

func TestParseLoader(t *testing.T) {
	for _, s := range []string{"fabric", "forge", "quilt", "neoforge", "vanilla"} {
		if _, err := ParseLoader(s); err != nil {
			t.Errorf("ParseLoader(%q) error = %v", s, err)
		}
	}
	if _, err := ParseLoader("bukkit"); err == nil {
		t.Error("ParseLoader must reject unknown loaders")
	}
}

func TestCatalogEnabled(t *testing.T) {
	if !LoaderFabric.CatalogEnabled() {
		t.Error("fabric must be catalog enabled")
	}
	if LoaderVanilla.CatalogEnabled() {
		t.Error("vanilla must not be catalog enabled")
	}
	if Loader("bukkit").CatalogEnabled() {
		t.Error("unknown loaders must not be catalog enabled")
	}
}
