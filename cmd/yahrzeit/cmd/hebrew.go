package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
)

func (c *cli) hebrewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hebrew <year> <month> <day>",
		Short: "Convert a Hebrew date to the Gregorian calendar",
		Long: `Convert a Hebrew date to the Gregorian calendar. The month is a name
(tishrei, cheshvan, "adar i", "adar ii", ...) or its number, Nisan = 1.
In a leap year "adar" means Adar I.

Examples:
  yahrzeit hebrew 5787 cheshvan 30
  yahrzeit hebrew 5787 "adar ii" 14`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHebrewDate(args)
			if err != nil {
				return err
			}
			g, err := calendar.HebrewToGregorian(h)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.tr.HebrewDate(h), g)
			return nil
		},
	}
}

func parseHebrewDate(args []string) (calendar.HebrewDate, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return calendar.HebrewDate{}, fmt.Errorf("%s: %q", config.ErrHebrewYear, args[0])
	}
	month, err := calendar.ParseMonth(args[1])
	if err != nil {
		return calendar.HebrewDate{}, err
	}
	day, err := strconv.Atoi(args[2])
	if err != nil {
		return calendar.HebrewDate{}, fmt.Errorf("%s: %q", config.ErrHebrewDay, args[2])
	}
	return calendar.HebrewDate{Year: year, Month: month, Day: day}, nil
}
