package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/legacyjats/mapping"
	"github.com/lehigh-university-libraries/legacyjats/pipeline"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var (
	convertFlags sourceFlags
	outputFile   string
	outDir       string
	pretty       bool
	snapshotDir  string
	writeReport  bool
	jobs         int
	selectExpr   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <records-file>...",
	Short: "Convert paragraph records to JATS XML",
	Long: `Convert the paragraph records of one or more articles to JATS XML.

A single input is written to --output or stdout. Several inputs need
--out-dir and are converted concurrently; each gets <name>.xml.

Translations are given per language as the HTML before and after the
reference list of the translated text.

Examples:
  legacyjats convert article.id
  legacyjats convert article.id -o article.xml --pretty
  legacyjats convert article.id --translation en=en_b.html,en_a.html --lang pt
  legacyjats convert article.id --snapshots stages/ --report
  legacyjats convert article.id --select '//xref[@ref-type="fig"]'
  legacyjats convert *.id --out-dir xml/ --jobs 8 -p scielo-legacy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&outDir, "out-dir", "", "Output directory for several inputs")
	f.StringVarP(&convertFlags.profileName, "profile", "p", "", "Profile name (default: built-in)")
	f.StringVar(&convertFlags.profileFile, "profile-file", "", "Custom profile YAML file")
	f.StringVar(&convertFlags.acronym, "acronym", "", "Journal acronym, overrides the profile")
	f.StringVar(&convertFlags.lang, "lang", "", "Language of the main text, overrides the profile")
	f.StringArrayVar(&convertFlags.translations, "translation", nil, "Translation as lang=before.html[,after.html] (repeatable)")
	f.BoolVar(&pretty, "pretty", false, "Indent the output")
	f.StringVar(&snapshotDir, "snapshots", "", "Directory to write the XML of every stage to")
	f.BoolVar(&writeReport, "report", false, "Write the JSON diagnostics report (stderr, or <output>.report.json)")
	f.IntVarP(&jobs, "jobs", "j", 4, "Number of inputs converted at once")
	f.StringVar(&selectExpr, "select", "", "Print only the nodes matching this XPath expression")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && outDir == "" {
		return errors.New("several inputs need --out-dir")
	}
	if len(args) > 1 && len(convertFlags.translations) > 0 {
		return errors.New("--translation applies to a single input")
	}
	if jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", jobs)
	}

	profile, err := convertFlags.loadProfile()
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	slog.Debug("using profile", "profile", profile.VersionedName())

	if outDir == "" {
		return convertFile(args[0], profile, outputFile)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for _, path := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return convertFile(path, profile, filepath.Join(outDir, outputName(path)))
		})
	}
	return g.Wait()
}

// outputName derives the output file name of an input.
func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xml"
}

// convertFile converts one records file and writes the result to out, or
// to stdout when out is empty.
func convertFile(path string, profile *mapping.Profile, out string) (err error) {
	src, err := convertFlags.buildSource(path, profile)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	log := slog.With("input", path)
	res := pipeline.Run(src, profile.PipelineOptions(log))
	if res.Degraded() {
		log.Warn("converted with failed stages", "run_id", res.RunID, "failed", len(res.Errors))
	} else {
		log.Info("converted", "run_id", res.RunID, "paragraphs", src.Partition.Len())
	}

	if snapshotDir != "" {
		dir := filepath.Join(snapshotDir, strings.TrimSuffix(outputName(path), ".xml"))
		if err := writeSnapshots(res, dir); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	var body string
	if selectExpr != "" {
		body, err = selectNodes(res, selectExpr)
	} else {
		body, err = formatXML(res.Final(), pretty)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, ferr := os.Create(out)
		if ferr != nil {
			return fmt.Errorf("creating output file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		w = f
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if writeReport {
		return emitReport(res, out)
	}
	return nil
}

// formatXML adds the XML declaration and, when indent is set, re-indents
// the document.
func formatXML(xml string, indent bool) (string, error) {
	if !indent {
		return xmlHeader + xml + "\n", nil
	}
	doc, err := xmlquery.Parse(strings.NewReader(xml))
	if err != nil {
		return "", fmt.Errorf("parsing output: %w", err)
	}
	article := xmlquery.FindOne(doc, "/article")
	if article == nil {
		return xmlHeader + xml + "\n", nil
	}
	out := article.OutputXMLWithOptions(xmlquery.WithOutputSelf(), xmlquery.WithIndentation("  "))
	return xmlHeader + strings.Trim(out, "\n") + "\n", nil
}

func selectNodes(res *pipeline.Result, expr string) (string, error) {
	nodes, err := res.Select(expr)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.OutputXML(true))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// writeSnapshots writes the XML after every successful stage, one file per
// stage, plus the stage errors.
func writeSnapshots(res *pipeline.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	for _, s := range res.Snapshots {
		name := fmt.Sprintf("%02d-%s.xml", s.Stage, s.Name)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(xmlHeader+s.XML+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}
	if len(res.Errors) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, e := range res.Errors {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
		if e.Trace != "" {
			sb.WriteString(e.Trace)
			sb.WriteString("\n")
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "errors.txt"), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing stage errors: %w", err)
	}
	return nil
}

// emitReport writes the diagnostics report next to out, or to stderr when
// the document went to stdout.
func emitReport(res *pipeline.Result, out string) error {
	data, err := res.ReportJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if out == "" {
		_, err = os.Stderr.Write(data)
		return err
	}
	path := strings.TrimSuffix(out, filepath.Ext(out)) + ".report.json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
