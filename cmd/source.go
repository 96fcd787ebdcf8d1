package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/legacyjats/mapping"
	"github.com/lehigh-university-libraries/legacyjats/paragraph"
	"github.com/lehigh-university-libraries/legacyjats/pipeline"
	"github.com/lehigh-university-libraries/legacyjats/record"
)

// sourceFlags are the flags shared by the commands that read an article.
type sourceFlags struct {
	profileName  string
	profileFile  string
	acronym      string
	lang         string
	translations []string
}

// loadProfile picks the profile named on the command line, a profile file,
// or the built-in default.
func (f *sourceFlags) loadProfile() (*mapping.Profile, error) {
	if f.profileFile != "" {
		return mapping.LoadProfile(f.profileFile)
	}

	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	name := f.profileName
	if name == "" {
		name = "default"
	}
	p, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s (not found in ~/.legacyjats/profiles/ or embedded profiles)", name)
	}
	return p, nil
}

// readParagraphs reads the paragraph records of path.
func readParagraphs(path string, p *mapping.Profile) ([]paragraph.Paragraph, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	records, err := record.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return paragraph.FromRecords(records, p.Fields), nil
}

// buildSource assembles the pipeline input for one records file.
func (f *sourceFlags) buildSource(path string, p *mapping.Profile) (*pipeline.Source, error) {
	paragraphs, err := readParagraphs(path, p)
	if err != nil {
		return nil, err
	}

	src := &pipeline.Source{
		Partition: paragraph.Segment(paragraphs),
		Acronym:   p.Options.Acronym,
		Lang:      p.Options.Lang,
	}
	if f.acronym != "" {
		src.Acronym = f.acronym
	}
	if f.lang != "" {
		src.Lang = f.lang
	}

	for _, spec := range f.translations {
		lang, tr, err := readTranslation(spec)
		if err != nil {
			return nil, err
		}
		if src.Translations == nil {
			src.Translations = map[string]pipeline.Translation{}
		}
		src.Translations[lang] = tr
	}
	return src, nil
}

// parseTranslation splits "lang=before.html[,after.html]".
func parseTranslation(spec string) (lang, before, after string, err error) {
	lang, files, ok := strings.Cut(spec, "=")
	lang = strings.TrimSpace(lang)
	if !ok || lang == "" || strings.TrimSpace(files) == "" {
		return "", "", "", fmt.Errorf("invalid translation %q, want lang=before.html[,after.html]", spec)
	}
	before, after, _ = strings.Cut(files, ",")
	return lang, strings.TrimSpace(before), strings.TrimSpace(after), nil
}

func readTranslation(spec string) (string, pipeline.Translation, error) {
	lang, beforePath, afterPath, err := parseTranslation(spec)
	if err != nil {
		return "", pipeline.Translation{}, err
	}
	var tr pipeline.Translation
	if tr.Before, err = readOptional(beforePath); err != nil {
		return "", tr, err
	}
	if tr.After, err = readOptional(afterPath); err != nil {
		return "", tr, err
	}
	return lang, tr, nil
}

// readOptional reads a translation part. An empty path is an absent part.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("translation file %s not found", path)
		}
		return "", fmt.Errorf("reading translation: %w", err)
	}
	return string(data), nil
}
