package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
)

func (c *cli) yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year <hebrew-year>",
		Short: "Describe a Hebrew year and list its months",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%s: %q", config.ErrHebrewYear, args[0])
			}
			if _, err := calendar.NewYear(year); err != nil {
				return err
			}

			leap := calendar.IsLeapYear(year)
			kind := c.tr.Msg(config.TKeyLblCommonYear)
			if leap {
				kind = c.tr.Msg(config.TKeyLblLeapYear)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", year, kind, calendar.YearTypeOf(year), calendar.YearLength(year))
			for _, m := range calendar.Months(year) {
				first, err := calendar.HebrewToGregorian(calendar.HebrewDate{Year: year, Month: m, Day: 1})
				if err != nil {
					// The final supported year runs past 9999-12-31.
					break
				}
				length, err := calendar.MonthLength(year, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", c.tr.MonthName(m, leap), length, first)
			}
			return w.Flush()
		},
	}
}
