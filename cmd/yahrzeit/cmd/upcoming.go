package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
)

func (c *cli) upcomingCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the yahrzeits of the coming days from the address book",
		Long: `Read the configured vCard source once and list the yahrzeits that fall
from today through the next --days days, earliest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.syncedApp(cmd)
			if err != nil {
				return err
			}
			obs, err := a.Upcoming(days)
			if err != nil && obs == nil {
				return err
			}
			c.printObservances(cmd, obs)
			return err
		},
	}

	cmd.Flags().IntVarP(&days, config.FlagDays, "d", config.DefaultWindowDays, config.FlagDescDays)
	return cmd
}

// printObservances writes one line per observance: date, Hebrew date, name
// and years since the death.
func (c *cli) printObservances(cmd *cobra.Command, obs []yahrzeit.Observance) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, o := range obs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", o.Date, c.tr.HebrewDate(o.Hebrew), o.Record.Name, o.Years)
	}
	_ = w.Flush()
}
