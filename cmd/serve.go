package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boom724/boomguru/internal/server"
	"github.com/boom724/boomguru/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP diagnosis service",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		addr, _ := cmd.Flags().GetString("addr")
		cfg := server.Config{
			Addr:           addr,
			CallbackAPIKey: os.Getenv("BOOMGURU_CALLBACK_API_KEY"),
			FetchTimeout:   30 * time.Second,
		}

		srv := server.New(cfg, pipeline, st.AnalysisRepo())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8092", "HTTP listen address")
	serveCmd.Flags().Bool("stop-on-unreal", false, "Terminate the pipeline when the image is not a real photo")
}
