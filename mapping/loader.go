package mapping

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// ProfileRegistry holds loaded profiles.
type ProfileRegistry struct {
	profiles map[string]*Profile
}

// NewProfileRegistry creates a new profile registry with embedded profiles loaded.
func NewProfileRegistry() (*ProfileRegistry, error) {
	r := &ProfileRegistry{
		profiles: make(map[string]*Profile),
	}
	r.Register(Default())

	entries, err := embeddedProfiles.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := embeddedProfiles.ReadFile("profiles/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded profile %s: %w", entry.Name(), err)
		}

		profile, err := parseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("embedded profile %s: %w", entry.Name(), err)
		}

		if profile.Name == "" {
			profile.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		r.profiles[profile.Name] = profile
	}

	return r, nil
}

// LoadProfile loads a profile from a file path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	profile, err := parseProfile(data)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return profile, nil
}

// LoadProfileFromString loads a profile from YAML content.
func LoadProfileFromString(content string) (*Profile, error) {
	return parseProfile([]byte(content))
}

// parseProfile reads a profile over the built-in defaults, so a file only
// lists what it changes.
func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	merged := MergeProfiles(Default(), &profile)
	merged.Name = profile.Name
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Get retrieves a profile by name.
func (r *ProfileRegistry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Register adds a profile to the registry.
func (r *ProfileRegistry) Register(profile *Profile) {
	r.profiles[profile.Name] = profile
}

// List returns all registered profile names, sorted.
func (r *ProfileRegistry) List() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFromDirectory loads all profiles from a directory. Files that do not
// parse are skipped with a warning.
func (r *ProfileRegistry) LoadFromDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading profile directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		profile, err := LoadProfile(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("skipping profile", "file", entry.Name(), "err", err)
			continue
		}
		r.profiles[profile.Name] = profile
	}

	return nil
}

// MergeProfiles merges a custom profile over a base profile.
// Custom values override base values when set.
func MergeProfiles(base, custom *Profile) *Profile {
	merged := &Profile{
		Name:        custom.Name,
		Version:     custom.Version,
		Description: custom.Description,
		Fields:      base.Fields,
		Options:     base.Options,
	}

	if merged.Name == "" {
		merged.Name = base.Name
	}
	if merged.Version == "" {
		merged.Version = base.Version
	}
	if merged.Description == "" {
		merged.Description = base.Description
	}

	f := custom.Fields
	if f.RecTypeTag != "" {
		merged.Fields.RecTypeTag = f.RecTypeTag
	}
	if f.RecType != "" {
		merged.Fields.RecType = f.RecType
	}
	if f.Text != "" {
		merged.Fields.Text = f.Text
	}
	if f.Index != "" {
		merged.Fields.Index = f.Index
	}
	if f.ReferenceIndex != "" {
		merged.Fields.ReferenceIndex = f.ReferenceIndex
	}
	if f.Part != "" {
		merged.Fields.Part = f.Part
	}

	o := custom.Options
	if len(o.BalanceTags) > 0 {
		merged.Options.BalanceTags = append([]string(nil), o.BalanceTags...)
	}
	if o.SimilarityThreshold != 0 {
		merged.Options.SimilarityThreshold = o.SimilarityThreshold
	}
	if o.FontHeadingSize != 0 {
		merged.Options.FontHeadingSize = o.FontHeadingSize
	}
	if o.Acronym != "" {
		merged.Options.Acronym = o.Acronym
	}
	if o.Lang != "" {
		merged.Options.Lang = o.Lang
	}

	return merged
}
