package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boom724/boomguru/internal/diagnose"
	"github.com/boom724/boomguru/internal/llm"
	"github.com/boom724/boomguru/internal/prompts"
	"github.com/boom724/boomguru/internal/reference"
	"github.com/boom724/boomguru/internal/store"
)

// buildPipeline assembles the diagnosis pipeline from flags and env vars.
func buildPipeline(cmd *cobra.Command, st *store.Store) (*diagnose.Pipeline, error) {
	ctx := cmd.Context()

	var eventRepo store.EventRepo
	if st != nil {
		eventRepo = st.EventRepo()
	}

	provider, err := llm.NewProviderFromEnv(ctx, eventRepo)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	library := prompts.Default()
	if dir, _ := cmd.Flags().GetString("prompts"); dir != "" {
		library, err = prompts.Load(dir)
		if err != nil {
			return nil, err
		}
	}

	vocab := reference.DefaultVocabulary()
	if path, _ := cmd.Flags().GetString("vocab"); path != "" {
		vocab, err = reference.LoadVocabulary(path)
		if err != nil {
			return nil, err
		}
	}

	catalog := reference.NewCatalog()
	if dir, _ := cmd.Flags().GetString("reference"); dir != "" {
		catalog, err = reference.LoadCatalog(dir)
		if err != nil {
			return nil, err
		}
	}

	cfg := diagnose.DefaultConfig()
	if stop, _ := cmd.Flags().GetBool("stop-on-unreal"); stop {
		cfg.StopOnUnreal = true
	}

	return diagnose.New(provider, library, vocab, catalog, cfg), nil
}
