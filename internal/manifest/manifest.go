// Package manifest persists the instance's mod inventory and settings as
// modwarden.json inside the mods directory. The manifest is advisory: the
// directory scan is the source of truth for which files exist and whether
// they are disabled. The manifest contributes the instance settings and
// carries the inventory between runs.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/modwarden/modwarden/internal/modfile"
)

const (
	// Name is the manifest's filename inside the mods directory.
	Name = "modwarden.json"
	// SchemaVersion is written to every manifest this build saves.
	SchemaVersion = 1
)

// Entry records one mod file. FileName is always the enabled-form name;
// the disabled state lives in the flag, not in the name.
type Entry struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	Disabled  bool   `json:"disabled,omitempty"`
}

// File is the persisted manifest.
type File struct {
	SchemaVersion int     `json:"schema_version"`
	Loader        string  `json:"loader,omitempty"`
	GameVersion   string  `json:"game_version,omitempty"`
	Channel       string  `json:"channel,omitempty"`
	Mods          []Entry `json:"mods"`
}

// Path returns the manifest location for a mods directory.
func Path(dir string) string {
	return filepath.Join(dir, Name)
}

// Load reads the manifest from dir. A missing manifest is not an error: it
// returns an empty one ready to be filled and saved.
func Load(dir string) (*File, error) {
	data, err := os.ReadFile(Path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return &File{SchemaVersion: SchemaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if f.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("unsupported schema_version %d", f.SchemaVersion)
	}
	return &f, nil
}

// Save writes the manifest atomically: a temp file in the same directory
// replaces the previous manifest only after a complete write, so a crash
// mid-save never leaves a truncated manifest behind.
func (f *File) Save(dir string) error {
	f.SchemaVersion = SchemaVersion

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := Path(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// Sync reconciles the inventory against a directory scan. The scan wins:
// files it lists are the new inventory, files it does not list are dropped.
// Entries are kept sorted by filename. Settings are untouched.
func (f *File) Sync(scan []Entry) {
	mods := make([]Entry, len(scan))
	copy(mods, scan)
	sort.Slice(mods, func(i, j int) bool { return mods[i].FileName < mods[j].FileName })
	f.Mods = mods
}

// RecordSettings stores the settings used for this run so later runs can
// omit the flags. Empty values leave the recorded ones alone.
func (f *File) RecordSettings(loader, gameVersion, channel string) {
	if loader != "" {
		f.Loader = loader
	}
	if gameVersion != "" {
		f.GameVersion = gameVersion
	}
	if channel != "" {
		f.Channel = channel
	}
}

// Lookup finds the entry for name, in enabled or disabled form.
func (f *File) Lookup(name string) (Entry, bool) {
	base := modfile.EnabledName(name)
	for _, e := range f.Mods {
		if e.FileName == base {
			return e, true
		}
	}
	return Entry{}, false
}

// SetDisabled updates the recorded state for one file. It reports whether
// an entry matched.
func (f *File) SetDisabled(name string, disabled bool) bool {
	base := modfile.EnabledName(name)
	for i := range f.Mods {
		if f.Mods[i].FileName == base {
			f.Mods[i].Disabled = disabled
			return true
		}
	}
	return false
}

// Remove drops the entry for name. It reports whether an entry was dropped.
func (f *File) Remove(name string) bool {
	base := modfile.EnabledName(name)
	for i := range f.Mods {
		if f.Mods[i].FileName == base {
			f.Mods = append(f.Mods[:i], f.Mods[i+1:]...)
			return true
		}
	}
	return false
}
