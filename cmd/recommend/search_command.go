package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"mflix/internal/bootstrap"
	"mflix/internal/config"
	"mflix/internal/domain/entity"
	"mflix/internal/logging"

	"github.com/spf13/cobra"
)

func newSearchCommand(configFlag, logLevel *string) *cobra.Command {
	var topK string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Fetch and enrich recommendations for a movie title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if *logLevel != "" {
				cfg.Log.Level = *logLevel
			}
			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			comps, err := bootstrap.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			sub, err := comps.Orchestrator.Submit(ctx, entity.SubmissionInput{
				Title: strings.Join(args, " "),
				TopK:  entity.RawTopK(topK),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, sub)
			}
			fmt.Fprint(out, renderSubmission(sub, colorEnabled(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&topK, "top-k", "k", "5", "Number of recommendations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func writeJSON(w io.Writer, sub *entity.Submission) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*entity.Submission
		NoResults bool `json:"no_results"`
	}{sub, sub.NoResults()})
}

func formatCount(n int) string {
	if n == 1 {
		return "1 movie"
	}
	return strconv.Itoa(n) + " movies"
}
