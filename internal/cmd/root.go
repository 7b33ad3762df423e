package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"shiftcal/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "shiftcal",
	Short: "Render work-shift calendars from iCalendar feeds",
	Long: `shiftcal ingests iCalendar event feeds describing work shifts, reconstructs
who is working when from free-text event titles, and renders printable
monthly and weekly views.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./shiftcal.yaml", "path to config file")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}
