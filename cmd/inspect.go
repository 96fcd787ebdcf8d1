package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/legacyjats/helpers"
	"github.com/lehigh-university-libraries/legacyjats/paragraph"
	"github.com/lehigh-university-libraries/legacyjats/record"
)

var inspectFlags sourceFlags

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show what the converter reads from a records file",
	Long: `Inspect the input of a conversion without running it.

Examples:
  legacyjats inspect records article.id
  legacyjats inspect partition article.id -p scielo-legacy`,
}

var inspectRecordsCmd = &cobra.Command{
	Use:   "records <records-file>",
	Short: "Print the parsed records as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("opening records file: %w", err)
		}
		records, err := record.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading records: %w", err)
		}
		data, err := record.MarshalJSON(records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

var inspectPartitionCmd = &cobra.Command{
	Use:   "partition <records-file>",
	Short: "Show how paragraphs split around the reference list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := inspectFlags.loadProfile()
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		paragraphs, err := readParagraphs(args[0], profile)
		if err != nil {
			return err
		}
		return printPartition(cmd.OutOrStdout(), paragraph.Segment(paragraphs))
	},
}

func printPartition(out io.Writer, p paragraph.Partition) error {
	fmt.Fprintf(out, "Paragraphs: %d (before %d, references %d, after %d)\n",
		p.Len(), len(p.Before), len(p.References), len(p.After))
	if first, ok := p.FirstReference(); ok {
		last, _ := p.LastReference()
		fmt.Fprintf(out, "Reference span: %d to %d\n", first+1, last+1)
	} else {
		fmt.Fprintln(out, "Reference span: none")
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PART\tINDEX\tREF\tTEXT")
	parts := []struct {
		name       string
		paragraphs []paragraph.Paragraph
	}{
		{"before", p.Before},
		{"refs", p.References},
		{"after", p.After},
	}
	for _, part := range parts {
		for _, para := range part.paragraphs {
			text := helpers.TruncateText(helpers.NormalizeWhitespace(helpers.PlainText(para.Text)), 70)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", part.name, para.Index, para.ReferenceIndex, text)
		}
	}
	return w.Flush()
}

func init() {
	inspectPartitionCmd.Flags().StringVarP(&inspectFlags.profileName, "profile", "p", "", "Profile name (default: built-in)")
	inspectPartitionCmd.Flags().StringVar(&inspectFlags.profileFile, "profile-file", "", "Custom profile YAML file")

	inspectCmd.AddCommand(inspectRecordsCmd)
	inspectCmd.AddCommand(inspectPartitionCmd)
}
