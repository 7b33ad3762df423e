package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"shiftcal/internal/extract"
	"shiftcal/internal/ics"
	"shiftcal/internal/pipeline"
)

var peopleFile string

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List the people extracted from an ICS file",
	Long: `Parse and expand an ICS file, extract person names from every occurrence
summary, and print the resulting registry with assigned colors. Useful for
checking how a feed's summaries tokenize before printing a calendar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if peopleFile == "" {
			return fmt.Errorf("--file is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		body, err := os.ReadFile(peopleFile)
		if err != nil {
			return err
		}

		snap, err := pipeline.Run([]pipeline.Document{{
			Source: ics.Source{ID: peopleFile},
			Body:   body,
		}}, pipeline.Options{Location: cfg.Location()})
		if err != nil {
			return err
		}

		names := make([]string, 0, len(snap.People))
		for name := range snap.People {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("%d people across %d shifts:\n", len(names), len(snap.Shifts))
		for _, name := range names {
			p := snap.People[name]
			fmt.Printf("  %-30s %s  (id: %s)\n", p.Name, p.Color, extract.PersonID(p.Name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.Flags().StringVar(&peopleFile, "file", "", "path to a local ICS file")
}
