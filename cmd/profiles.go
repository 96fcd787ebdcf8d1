package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/legacyjats/mapping"
)

var (
	saveFrom            string
	saveAcronym         string
	saveLang            string
	saveFontHeadingSize int
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage conversion profiles",
	Long: `List, inspect and save conversion profiles.

Profiles name the record tags paragraphs are read from and tune markup
repair and heading detection. Embedded profiles ship with the binary;
user profiles are stored in ~/.legacyjats/profiles/ and take precedence.

Examples:
  legacyjats profiles list
  legacyjats profiles show scielo
  legacyjats profiles save bjmbr --from scielo --acronym bjmbr --lang en
  legacyjats profiles delete bjmbr`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tDESCRIPTION")
		for _, name := range registry.List() {
			p, _ := registry.Get(name)
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, p.Version, p.Description)
		}
		return w.Flush()
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := getProfile(args[0])
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var profilesFieldsCmd = &cobra.Command{
	Use:   "fields <profile>",
	Short: "List the record tags a profile reads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := getProfile(args[0])
		if err != nil {
			return err
		}

		f := p.Fields
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tTAG")
		fmt.Fprintf(w, "record type\t%s = %q\n", f.RecTypeTag, f.RecType)
		fmt.Fprintf(w, "text\t%s\n", f.Text)
		fmt.Fprintf(w, "index\t%s\n", f.Index)
		fmt.Fprintf(w, "reference index\t%s\n", f.ReferenceIndex)
		fmt.Fprintf(w, "part\t%s\n", f.Part)
		return w.Flush()
	},
}

var profilesSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a user profile based on an existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := getProfile(saveFrom)
		if err != nil {
			return err
		}
		p := mapping.MergeProfiles(base, &mapping.Profile{
			Name: args[0],
			Options: mapping.ProfileOptions{
				Acronym:         saveAcronym,
				Lang:            saveLang,
				FontHeadingSize: saveFontHeadingSize,
			},
		})
		if err := p.Save(); err != nil {
			return err
		}
		path, _ := mapping.ProfilePath(p.Name)
		fmt.Fprintf(os.Stderr, "Saved profile %s to %s\n", p.Name, path)
		return nil
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mapping.DeleteProfile(args[0])
	},
}

func loadRegistry() (*mapping.ProfileRegistry, error) {
	registry, err := mapping.NewProfileRegistry()
	if err != nil {
		return nil, err
	}
	if err := registry.LoadUserProfiles(); err != nil {
		return nil, fmt.Errorf("loading user profiles: %w", err)
	}
	return registry, nil
}

func getProfile(name string) (*mapping.Profile, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	p, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return p, nil
}

func init() {
	profilesSaveCmd.Flags().StringVar(&saveFrom, "from", "default", "Profile to start from")
	profilesSaveCmd.Flags().StringVar(&saveAcronym, "acronym", "", "Journal acronym")
	profilesSaveCmd.Flags().StringVar(&saveLang, "lang", "", "Language of the main text")
	profilesSaveCmd.Flags().IntVar(&saveFontHeadingSize, "font-heading-size", 0, "Font size (1 to 7) that opens a section")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesFieldsCmd)
	profilesCmd.AddCommand(profilesSaveCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
}
