package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
)

func (c *cli) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [YYYY-MM-DD]",
		Short: "Convert a Gregorian date to the Hebrew calendar",
		Long: `Convert a Gregorian date to the Hebrew calendar. Without an argument the
date is today in the site timezone.

Examples:
  yahrzeit convert
  yahrzeit convert 2026-10-17`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.dateOrToday(optionalArg(args))
			if err != nil {
				return err
			}
			h, err := calendar.GregorianToHebrew(g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g, c.tr.HebrewDate(h))
			return nil
		},
	}
}
