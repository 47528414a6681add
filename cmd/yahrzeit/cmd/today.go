package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/today"
)

func (c *cli) todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's Hebrew date and this month's yahrzeits",
		Long: `Show today's date in both calendars, resolved in the site timezone.
When a vCard source is configured, also list the yahrzeits of the current
Hebrew month.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.today()
			if err != nil {
				return err
			}
			tc, err := today.Current(g)
			if err != nil {
				return err
			}

			kind := c.tr.Msg(config.TKeyLblCommonYear)
			if tc.IsLeapYear {
				kind = c.tr.Msg(config.TKeyLblLeapYear)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", g, c.tr.HebrewDate(tc.HebrewDate), kind)

			if !c.sourceConfigured() {
				return nil
			}
			a, err := c.syncedApp(cmd)
			if err != nil {
				return err
			}
			_, obs, err := a.ThisMonth()
			c.printObservances(cmd, obs)
			return err
		},
	}
}
