package cmd

import (
	"github.com/spf13/cobra"

	"github.com/boom724/boomguru/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "boomguru",
	Short: "AI diagnosis for construction machine images",
	Long: "Boomguru classifies photos of construction machinery, reads fault codes\n" +
		"off display panels and produces a structured technical report through a\n" +
		"multi-stage multimodal model pipeline.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BOOMGURU_DB env var)")
	rootCmd.PersistentFlags().String("prompts", "", "Directory of prompt template overrides")
	rootCmd.PersistentFlags().String("vocab", "", "Part-category vocabulary file (one category per line)")
	rootCmd.PersistentFlags().String("reference", "", "Directory of EID/CID/FMI description CSV files")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then BOOMGURU_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
