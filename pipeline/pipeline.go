// Package pipeline converts segmented legacy paragraphs and translations
// into a JATS-like article tree.
//
// A run applies a fixed list of stages. Each stage parses the previous
// stage's serialized tree, rewrites it and serializes it again, so a stage
// that fails leaves nothing behind: its error is recorded and the next stage
// starts from the last good snapshot.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/legacyjats/paragraph"
	"github.com/lehigh-university-libraries/legacyjats/sanitize"
)

// Seed is the tree every run starts from.
const Seed = "<article></article>"

// DefaultFontHeadingSize is the smallest legacy font size treated as a
// heading.
const DefaultFontHeadingSize = 5

// Translation is the markup of one translated version of the document.
type Translation struct {
	Before string
	After  string
}

// Source is the immutable input of a run.
type Source struct {
	Partition paragraph.Partition

	// Translations maps a language code to its markup.
	Translations map[string]Translation

	// Acronym is the journal acronym used to recognise links to other pages
	// of the same journal.
	Acronym string

	// Lang is the language of the main document.
	Lang string
}

// Options configures a run. A nil *Options uses defaults.
type Options struct {
	Sanitize        *sanitize.Options
	FontHeadingSize int
	Logger          *slog.Logger
}

func (o *Options) orDefault() *Options {
	if o == nil {
		o = &Options{}
	}
	out := *o
	if out.Sanitize == nil {
		out.Sanitize = sanitize.DefaultOptions()
	}
	if out.FontHeadingSize <= 0 {
		out.FontHeadingSize = DefaultFontHeadingSize
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// Stage is one step of the conversion.
type Stage struct {
	Name string

	// State is reached once the stage has run, whether or not it failed.
	State State

	Run func(*Document) error
}

// DefaultStages returns the conversion stages in their fixed order.
func DefaultStages() []Stage {
	return []Stage{
		{"payloads", StatePayloadWrapped, wrapPayloads},
		{"placement", StatePlaced, placePayloads},
		{"local-links", StatePlaced, markLocalLinks},
		{"rename", StateRenamed, renameElements},
		{"font-headings", StateRenamed, promoteFontHeadings},
		{"anchors", StateLinksClassified, classifyAnchors},
		{"xrefs", StateXrefsResolved, resolveXrefs},
		{"superscripts", StateXrefsResolved, promoteSuperscripts},
		{"assembly", StateAssetsAssembled, assembleAssets},
		{"cleanup", StateCleaned, cleanup},
		{"inline-graphics", StateCleaned, inlineGraphics},
		{"display-formulas", StateFinal, displayFormulas},
	}
}

// Pipeline runs a list of stages.
type Pipeline struct {
	stages []Stage
	opts   *Options
}

// New returns a pipeline over stages.
func New(stages []Stage, opts *Options) *Pipeline {
	return &Pipeline{stages: stages, opts: opts.orDefault()}
}

// Run converts src with the default stages.
func Run(src *Source, opts *Options) *Result {
	return New(DefaultStages(), opts).Run(src)
}

// Snapshot is the serialized tree after a successful stage.
type Snapshot struct {
	// Stage is the 1-based position of the stage.
	Stage    int
	Name     string
	State    State
	XML      string
	Duration time.Duration
}

// StageError records a stage that failed.
type StageError struct {
	Stage   int
	Name    string
	Kind    string
	Message string
	Trace   string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %s: %s", e.Stage, e.Name, e.Kind, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type stageResult struct {
	xml string
	err *StageError
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Snapshots []Snapshot
	Errors    []*StageError
	State     State
}

// Final returns the last good tree.
func (r *Result) Final() string {
	if len(r.Snapshots) == 0 {
		return Seed
	}
	return r.Snapshots[len(r.Snapshots)-1].XML
}

// Degraded reports whether any stage failed.
func (r *Result) Degraded() bool {
	return len(r.Errors) > 0
}

// Run applies every stage to src. It never fails: stage errors are
// collected in the result.
func (p *Pipeline) Run(src *Source) *Result {
	if src == nil {
		src = &Source{}
	}
	res := &Result{RunID: uuid.NewString(), State: StateRaw}
	log := p.opts.Logger.With("run_id", res.RunID)
	res.State = StatePartitioned

	current := Seed
	for i, st := range p.stages {
		start := time.Now()
		out := p.runStage(i+1, st, src, current, log)
		elapsed := time.Since(start)

		if out.err != nil {
			log.Warn("stage failed", "stage", st.Name, "kind", out.err.Kind, "err", out.err.Message, "duration", elapsed)
			res.Errors = append(res.Errors, out.err)
		} else {
			log.Debug("stage done", "stage", st.Name, "duration", elapsed)
			current = out.xml
			res.Snapshots = append(res.Snapshots, Snapshot{
				Stage:    i + 1,
				Name:     st.Name,
				State:    st.State,
				XML:      out.xml,
				Duration: elapsed,
			})
		}
		if st.State > res.State {
			res.State = st.State
		}
	}

	log.Info("conversion finished", "stages", len(p.stages), "errors", len(res.Errors), "state", res.State)
	return res
}

func (p *Pipeline) runStage(n int, st Stage, src *Source, input string, log *slog.Logger) (out stageResult) {
	defer func() {
		if r := recover(); r != nil {
			out = stageResult{err: &StageError{
				Stage:   n,
				Name:    st.Name,
				Kind:    "panic",
				Message: fmt.Sprint(r),
				Trace:   string(debug.Stack()),
			}}
		}
	}()

	doc, err := parseDocument(input, src, p.opts, log.With("stage", st.Name))
	if err == nil {
		err = st.Run(doc)
	}
	if err != nil {
		return stageResult{err: &StageError{
			Stage:   n,
			Name:    st.Name,
			Kind:    errorKind(err),
			Message: err.Error(),
			Err:     err,
		}}
	}
	return stageResult{xml: doc.String()}
}

func errorKind(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
