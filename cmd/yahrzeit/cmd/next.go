package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
)

func (c *cli) nextCmd() *cobra.Command {
	var (
		afterSunset bool
		policy      string
		count       int
		from        string
	)

	cmd := &cobra.Command{
		Use:   "next <date-of-death>",
		Short: "List the coming yahrzeits of a death",
		Long: `List the coming observances of a death given as a Gregorian date
(YYYY-MM-DD), starting today or at --from. Each line shows the civil date, the
Hebrew date and the number of years since the death.

A death in Adar of a common year needs an Adar policy for leap years: pass
--adar-policy or set ADAR_POLICY.

Examples:
  yahrzeit next 2019-11-04
  yahrzeit next 2025-03-10 --adar-policy adar2 --count 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateOfDeath, err := calendar.ParseGregorian(args[0])
			if err != nil {
				return err
			}
			rec, err := yahrzeit.NewRecord("", dateOfDeath, afterSunset)
			if err != nil {
				return err
			}
			if rec.Policy, err = yahrzeit.ParseAdarPolicy(policy); err != nil {
				return err
			}
			start, err := c.dateOrToday(from)
			if err != nil {
				return err
			}
			systemDefault, err := c.settings.Policy()
			if err != nil {
				return err
			}

			// Occurrences are strictly after their start, so begin the day before.
			before, err := calendar.AddDays(start, -1)
			if err != nil {
				before = start
			}
			seq, err := rec.Occurrences(before, systemDefault)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", dateOfDeath, c.tr.HebrewDate(rec.HebrewDateOfDeath()))
			n := 0
			for date := range seq {
				if n >= count {
					break
				}
				h, err := calendar.GregorianToHebrew(date)
				if err != nil {
					return err
				}
				obs, err := rec.ObservanceIn(h.Year, systemDefault)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", obs.Date, c.tr.HebrewDate(obs.Hebrew), obs.Years)
				n++
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&afterSunset, config.FlagAfterSunset, false, config.FlagDescAfterSunset)
	cmd.Flags().StringVar(&policy, config.FlagPolicy, "", config.FlagDescPolicy)
	cmd.Flags().IntVarP(&count, config.FlagCount, "n", config.DefaultOccurrences, config.FlagDescCount)
	cmd.Flags().StringVar(&from, config.FlagFrom, "", config.FlagDescFrom)
	return cmd
}
