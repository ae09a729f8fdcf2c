// Package instance models a game instance's mods directory and the local
// file operations on it: listing installed archives, deleting them, and the
// rename-based enable/disable transition.
package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/modwarden/modwarden/internal/modfile"
)

// ModFile is one installed mod archive. Name is always the enabled form of
// the filename; Disabled records the on-disk state.
type ModFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Disabled  bool   `json:"disabled"`
}

// Instance is an opened mods directory plus the settings that constrain
// which catalog versions fit it.
type Instance struct {
	Dir     string
	Loader  Loader
	Version string
}

// Open validates the mods directory and returns an Instance.
func Open(dir string, loader Loader, version string) (*Instance, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open instance: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to open instance: %s is not a directory", dir)
	}
	return &Instance{Dir: dir, Loader: loader, Version: version}, nil
}

// A bare game version like "1.20.1".
var gameVersionPattern = regexp.MustCompile(`^\d+(\.\d+){1,2}$`)

// GameVersion extracts the game version from the instance version string.
// Compound strings are decomposed: "fabric-loader-0.15.11-1.20.1" yields
// "1.20.1", as does "1.20.1-forge-47.2.0". A string with no version-like
// token is returned as-is.
func (inst *Instance) GameVersion() string {
	v := strings.TrimSpace(inst.Version)
	if v == "" || gameVersionPattern.MatchString(v) {
		return v
	}

	var hits []string
	for _, part := range strings.Split(v, "-") {
		if gameVersionPattern.MatchString(part) {
			hits = append(hits, part)
		}
	}
	if len(hits) == 0 {
		return v
	}
	// Fabric/Quilt ids put the loader version before the game version.
	if strings.Contains(v, "loader") {
		return hits[len(hits)-1]
	}
	return hits[0]
}

// List scans the mods directory and returns the installed archives sorted by
// name. When both enabled and disabled forms of the same file exist, the
// enabled one wins.
func (inst *Instance) List() ([]ModFile, error) {
	entries, err := os.ReadDir(inst.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods directory: %w", err)
	}

	seen := make(map[string]ModFile)
	for _, entry := range entries {
		if entry.IsDir() || !modfile.IsModArchive(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		base, disabled := modfile.SplitDisabled(entry.Name())
		if prev, ok := seen[base]; ok && !prev.Disabled {
			continue
		}
		seen[base] = ModFile{Name: base, SizeBytes: info.Size(), Disabled: disabled}
	}

	files := make([]ModFile, 0, len(seen))
	for _, f := range seen {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Path returns the absolute path for a mod filename inside the instance.
// The name must be a bare filename; anything path-like is rejected.
func (inst *Instance) Path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(inst.Dir, name), nil
}

// Remove deletes a mod file, in whichever form it exists on disk.
func (inst *Instance) Remove(name string) error {
	base := modfile.EnabledName(name)
	if err := checkName(base); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(inst.Dir, base))
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", base, err)
	}

	if err := os.Remove(filepath.Join(inst.Dir, modfile.DisabledName(base))); err != nil {
		return fmt.Errorf("failed to delete %s: %w", base, err)
	}
	return nil
}

// SetEnabled transitions a mod between its enabled and disabled filenames.
// It is idempotent: asking for the state the file is already in is a no-op.
func (inst *Instance) SetEnabled(name string, enabled bool) error {
	base := modfile.EnabledName(name)
	if err := checkName(base); err != nil {
		return err
	}

	enabledPath := filepath.Join(inst.Dir, base)
	disabledPath := filepath.Join(inst.Dir, modfile.DisabledName(base))

	if enabled {
		if _, err := os.Stat(enabledPath); err == nil {
			return nil
		}
		if err := os.Rename(disabledPath, enabledPath); err != nil {
			return fmt.Errorf("failed to enable %s: %w", base, err)
		}
		return nil
	}

	if _, err := os.Stat(disabledPath); err == nil {
		return nil
	}
	if err := os.Rename(enabledPath, disabledPath); err != nil {
		return fmt.Errorf("failed to disable %s: %w", base, err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid mod filename %q", name)
	}
	return nil
}
