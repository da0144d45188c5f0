package main

import (
	"fmt"
	"strings"

	"mflix/internal/domain/title"

	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <raw title>",
		Short: "Show how a recommendation string is split for metadata lookup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := title.Parse(strings.Join(args, " "))
			year := p.Year
			if !p.HasYear() {
				year = "(none)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "title: %s\nyear:  %s\n", p.QueryTitle, year)
			return nil
		},
	}
}
