// Package mapping provides conversion profiles: where paragraph records keep
// their fields and how the pipeline should treat a collection's markup.
package mapping

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/legacyjats/paragraph"
	"github.com/lehigh-university-libraries/legacyjats/pipeline"
	"github.com/lehigh-university-libraries/legacyjats/sanitize"
)

// Profile represents a complete conversion configuration for one legacy
// collection.
type Profile struct {
	// Name is the profile identifier
	Name string `yaml:"name" json:"name"`

	// Version of the record layout this profile targets
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Fields maps paragraph attributes to record tags
	Fields paragraph.Fields `yaml:"fields" json:"fields"`

	Options ProfileOptions `yaml:"options,omitempty" json:"options,omitempty"`
}

// VersionedName returns the profile name with version (e.g., "scielo@1.0")
func (p *Profile) VersionedName() string {
	if p.Version != "" {
		return p.Name + "@" + p.Version
	}
	return p.Name
}

// ProfileOptions tunes sanitizing and structure recovery.
type ProfileOptions struct {
	// BalanceTags are the elements whose unmatched tags split paragraphs
	BalanceTags []string `yaml:"balance_tags,omitempty" json:"balance_tags,omitempty"`

	// SimilarityThreshold is the minimum text similarity for a markup
	// repair to be kept
	SimilarityThreshold float64 `yaml:"similarity_threshold,omitempty" json:"similarity_threshold,omitempty"`

	// FontHeadingSize is the font size (1 to 7) from which a paragraph made
	// of one font element opens a section
	FontHeadingSize int `yaml:"font_heading_size,omitempty" json:"font_heading_size,omitempty"`

	// Acronym is the journal acronym used to recognize local links
	Acronym string `yaml:"acronym,omitempty" json:"acronym,omitempty"`

	// Lang is the language of the main text
	Lang string `yaml:"lang,omitempty" json:"lang,omitempty"`
}

var errNoTextField = errors.New("fields.text is required")

// Validate checks that the profile can read paragraphs.
func (p *Profile) Validate() error {
	if p.Fields.Text == "" {
		return fmt.Errorf("profile %q: %w", p.Name, errNoTextField)
	}
	if p.Fields.RecType != "" && p.Fields.RecTypeTag == "" {
		return fmt.Errorf("profile %q: fields.rec_type needs fields.rec_type_tag", p.Name)
	}
	if t := p.Options.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("profile %q: similarity_threshold %v out of range", p.Name, t)
	}
	if s := p.Options.FontHeadingSize; s < 0 || s > 7 {
		return fmt.Errorf("profile %q: font_heading_size %d out of range", p.Name, s)
	}
	return nil
}

// SanitizeOptions returns the sanitizer configuration of the profile.
func (p *Profile) SanitizeOptions() *sanitize.Options {
	opts := sanitize.DefaultOptions()
	if len(p.Options.BalanceTags) > 0 {
		opts.BalanceTags = append([]string(nil), p.Options.BalanceTags...)
	}
	if p.Options.SimilarityThreshold > 0 {
		opts.Threshold = p.Options.SimilarityThreshold
	}
	return opts
}

// PipelineOptions returns the pipeline configuration of the profile.
func (p *Profile) PipelineOptions(logger *slog.Logger) *pipeline.Options {
	return &pipeline.Options{
		Sanitize:        p.SanitizeOptions(),
		FontHeadingSize: p.Options.FontHeadingSize,
		Logger:          logger,
	}
}

// Default returns the built-in profile for the legacy paragraph database.
func Default() *Profile {
	return &Profile{
		Name:        "default",
		Description: "Built-in paragraph record layout",
		Fields:      paragraph.DefaultFields(),
		Options: ProfileOptions{
			BalanceTags:         sanitize.DefaultOptions().BalanceTags,
			SimilarityThreshold: sanitize.DefaultThreshold,
			FontHeadingSize:     pipeline.DefaultFontHeadingSize,
		},
	}
}
