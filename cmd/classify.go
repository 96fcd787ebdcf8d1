package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/legacyjats/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run a classifier on a piece of text",
	Long: `Run the cross-reference, section or footnote classifier on the given
text. Useful for checking how a corpus heading or link will be read.

Examples:
  legacyjats classify xref "Fig. 3a" f3
  legacyjats classify section "Materiales y métodos"
  legacyjats classify footnote "Conflicts of interest: none declared"`,
}

var classifyXrefCmd = &cobra.Command{
	Use:   "xref <text> [id]",
	Short: "Classify link text and target id",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		return printXref(cmd.OutOrStdout(), classify.Xref(args[0], id))
	},
}

var classifySectionCmd = &cobra.Command{
	Use:   "section <heading>",
	Short: "Classify a section heading",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printMatch(cmd.OutOrStdout(), "sec-type", classify.Section(strings.Join(args, " ")))
	},
}

var classifyFootnoteCmd = &cobra.Command{
	Use:   "footnote <text>",
	Short: "Classify footnote text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printMatch(cmd.OutOrStdout(), "fn-type", classify.Footnote(strings.Join(args, " ")))
	},
}

func printXref(out io.Writer, r classify.XrefResult) error {
	if !r.Classified() {
		_, err := fmt.Fprintln(out, "unclassified")
		return err
	}
	fmt.Fprintf(out, "ref-type: %s\n", r.RefType)
	fmt.Fprintf(out, "element:  %s\n", r.ElementName)
	fmt.Fprintf(out, "source:   %s\n", r.Source)
	if r.Label != "" {
		fmt.Fprintf(out, "label:    %s\n", r.Label)
	}
	if r.Number != "" {
		fmt.Fprintf(out, "number:   %s\n", r.Number)
	}
	if r.Inconsistent() {
		fmt.Fprintf(out, "warning:  text reads as %s\n", r.TextRefType)
	}
	return nil
}

func printMatch(out io.Writer, attr string, m classify.Match) error {
	if !m.Matched() {
		_, err := fmt.Fprintln(out, "unclassified")
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", attr, m.Type())
	if m.Label != "" {
		fmt.Fprintf(out, "label: %s\n", m.Label)
	}
	if m.Uncertain {
		fmt.Fprintln(out, "uncertain: only part of the text classified")
	}
	return nil
}

func init() {
	classifyCmd.AddCommand(classifyXrefCmd)
	classifyCmd.AddCommand(classifySectionCmd)
	classifyCmd.AddCommand(classifyFootnoteCmd)
}
