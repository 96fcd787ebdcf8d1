package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/legacyjats/mapping"
	"github.com/lehigh-university-libraries/legacyjats/pipeline"
)

var (
	auditFlags  sourceFlags
	auditOutput string
	auditJSON   bool
)

// auditCmd converts a batch of articles and summarises what needs review.
var auditCmd = &cobra.Command{
	Use:   "audit <records-file>...",
	Short: "Convert articles and report what needs human review",
	Long: `Converts every input without writing XML and reports:
- Articles where a stage failed, and which stages fail most
- Review comments left in the output, grouped by message
- Links whose target was never found

Example:
  legacyjats audit *.id
  legacyjats audit *.id -p scielo-legacy --json -o audit.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAudit,
}

// AuditReport contains the results of a conversion audit.
type AuditReport struct {
	TotalArticles    int              `json:"total_articles"`
	DegradedArticles int              `json:"degraded_articles"`
	Unreadable       []string         `json:"unreadable,omitempty"`
	StageFailures    []StageFailure   `json:"stage_failures,omitempty"`
	Uncertain        map[string]int   `json:"uncertain"`
	UnresolvedLinks  int              `json:"unresolved_links"`
	Articles         []ArticleSummary `json:"articles"`
}

// StageFailure counts the failures of one stage by error kind.
type StageFailure struct {
	Stage string         `json:"stage"`
	Count int            `json:"count"`
	Kinds map[string]int `json:"kinds"`
}

// ArticleSummary is the per-input line of the audit.
type ArticleSummary struct {
	Input      string `json:"input"`
	RunID      string `json:"run_id"`
	State      string `json:"state"`
	Failed     int    `json:"failed_stages"`
	Uncertain  int    `json:"uncertain"`
	Unresolved int    `json:"unresolved_links"`
}

func init() {
	f := auditCmd.Flags()
	f.StringVarP(&auditFlags.profileName, "profile", "p", "", "Profile name (default: built-in)")
	f.StringVar(&auditFlags.profileFile, "profile-file", "", "Custom profile YAML file")
	f.StringVarP(&auditOutput, "output", "o", "", "Output file (default: stdout)")
	f.BoolVar(&auditJSON, "json", false, "Output as JSON")
}

func runAudit(cmd *cobra.Command, args []string) error {
	profile, err := auditFlags.loadProfile()
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	report := newAuditReport()
	for _, path := range args {
		res, err := auditRun(path, profile)
		if err != nil {
			slog.Warn("skipping input", "input", path, "err", err)
			report.Unreadable = append(report.Unreadable, path)
			continue
		}
		if err := report.add(path, res); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	report.finish()

	var output []byte
	if auditJSON {
		output, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
	} else {
		output = []byte(formatAuditReport(report))
	}

	if auditOutput != "" {
		return os.WriteFile(auditOutput, output, 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}

func auditRun(path string, profile *mapping.Profile) (*pipeline.Result, error) {
	src, err := auditFlags.buildSource(path, profile)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(src, profile.PipelineOptions(slog.With("input", path))), nil
}

// unresolvedPrefix starts the review message of a link whose target was
// never found.
const unresolvedPrefix = "unresolved link"

func newAuditReport() *AuditReport {
	return &AuditReport{Uncertain: make(map[string]int)}
}

func (a *AuditReport) add(path string, res *pipeline.Result) error {
	msgs, err := res.Uncertain()
	if err != nil {
		return err
	}
	unresolved := 0
	for _, m := range msgs {
		if strings.HasPrefix(m, unresolvedPrefix) {
			unresolved++
		}
	}

	a.TotalArticles++
	if res.Degraded() {
		a.DegradedArticles++
	}
	for _, e := range res.Errors {
		a.failure(e.Name).Kinds[e.Kind]++
	}
	for _, m := range msgs {
		a.Uncertain[uncertainGroup(m)]++
	}
	a.UnresolvedLinks += unresolved

	a.Articles = append(a.Articles, ArticleSummary{
		Input:      path,
		RunID:      res.RunID,
		State:      res.State.String(),
		Failed:     len(res.Errors),
		Uncertain:  len(msgs),
		Unresolved: unresolved,
	})
	return nil
}

func (a *AuditReport) failure(stage string) *StageFailure {
	for i := range a.StageFailures {
		if a.StageFailures[i].Stage == stage {
			a.StageFailures[i].Count++
			return &a.StageFailures[i]
		}
	}
	a.StageFailures = append(a.StageFailures, StageFailure{Stage: stage, Count: 1, Kinds: make(map[string]int)})
	return &a.StageFailures[len(a.StageFailures)-1]
}

func (a *AuditReport) finish() {
	sort.SliceStable(a.StageFailures, func(i, j int) bool {
		return a.StageFailures[i].Count > a.StageFailures[j].Count
	})
}

// uncertainGroup drops the ids and numbers from a review message so that
// the same problem in different places counts once.
func uncertainGroup(msg string) string {
	words := strings.Fields(msg)
	out := words[:0]
	for _, w := range words {
		if strings.ContainsAny(w, "0123456789") {
			w = "#"
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func formatAuditReport(report *AuditReport) string {
	var sb strings.Builder

	sb.WriteString("=== Conversion Audit Report ===\n\n")
	fmt.Fprintf(&sb, "Articles converted: %d\n", report.TotalArticles)
	if report.TotalArticles > 0 {
		fmt.Fprintf(&sb, "Articles with failed stages: %d (%.1f%%)\n",
			report.DegradedArticles,
			float64(report.DegradedArticles)/float64(report.TotalArticles)*100)
	}
	fmt.Fprintf(&sb, "Unresolved links: %d\n\n", report.UnresolvedLinks)

	if len(report.Unreadable) > 0 {
		sb.WriteString("UNREADABLE INPUTS:\n")
		for _, p := range report.Unreadable {
			fmt.Fprintf(&sb, "  - %s\n", p)
		}
		sb.WriteString("\n")
	}

	if len(report.StageFailures) > 0 {
		sb.WriteString("FAILED STAGES:\n")
		for _, f := range report.StageFailures {
			kinds := make([]string, 0, len(f.Kinds))
			for k, n := range f.Kinds {
				kinds = append(kinds, fmt.Sprintf("%s x%d", k, n))
			}
			sort.Strings(kinds)
			fmt.Fprintf(&sb, "  - %s: %d (%s)\n", f.Stage, f.Count, strings.Join(kinds, ", "))
		}
		sb.WriteString("\n")
	}

	if len(report.Uncertain) > 0 {
		sb.WriteString("REVIEW COMMENTS BY MESSAGE:\n")
		type kv struct {
			msg   string
			count int
		}
		var sorted []kv
		for k, v := range report.Uncertain {
			sorted = append(sorted, kv{k, v})
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].count != sorted[j].count {
				return sorted[i].count > sorted[j].count
			}
			return sorted[i].msg < sorted[j].msg
		})
		for _, item := range sorted {
			fmt.Fprintf(&sb, "  %d  %s\n", item.count, item.msg)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("ARTICLES:\n")
	for _, a := range report.Articles {
		fmt.Fprintf(&sb, "  %s  %s  failed=%d uncertain=%d unresolved=%d\n",
			a.Input, a.State, a.Failed, a.Uncertain, a.Unresolved)
	}
	return sb.String()
}
