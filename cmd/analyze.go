package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/boom724/boomguru/internal/diagnose"
	"github.com/boom724/boomguru/internal/imagesource"
	"github.com/boom724/boomguru/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image file or URL>",
	Short: "Diagnose a single image and print the record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		pipeline, err := buildPipeline(cmd, st)
		if err != nil {
			return err
		}

		ref := args[0]
		var image string
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			fetcher := imagesource.NewFetcher(30 * time.Second)
			image, err = fetcher.Fetch(ctx, ref)
		} else {
			var data []byte
			data, err = os.ReadFile(ref)
			if err == nil {
				image = imagesource.FromBytes(data, ref)
			}
		}
		if err != nil {
			return fmt.Errorf("load image: %w", err)
		}

		language, _ := cmd.Flags().GetString("language")
		task := diagnose.ImageTask{
			ID:       uuid.NewString(),
			Image:    image,
			Language: language,
		}

		record, runErr := pipeline.Run(ctx, task)

		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if runErr != nil {
			return fmt.Errorf("pipeline aborted (partial record above): %w", runErr)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("language", "en", "Output language code (en, tr, ru, ka, az, kk, ky)")
	analyzeCmd.Flags().Bool("stop-on-unreal", false, "Terminate the pipeline when the image is not a real photo")
}
