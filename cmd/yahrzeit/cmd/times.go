package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/zmanim"
)

func (c *cli) timesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "times [YYYY-MM-DD]",
		Short: "Compute candle lighting and havdalah for a date",
		Long: `Compute sunset and candle lighting on the given date (default today) and
havdalah on the following evening, at LATITUDE/LONGITUDE with the configured
offsets. Times are shown in the site timezone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := c.dateOrToday(optionalArg(args))
			if err != nil {
				return err
			}
			lc, err := c.settings.LocationContext()
			if err != nil {
				return err
			}
			loc, err := c.settings.Location()
			if err != nil {
				return err
			}

			var provider zmanim.SunsetProvider = zmanim.MeeusSunset{}
			if c.sunset != nil {
				provider = c.sunset
			}

			times, err := zmanim.ServiceTimes(date, lc, provider)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrServiceTimes, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%s\n", c.tr.Msg(config.TKeyLblSunset), times.Sunset.In(loc).Format(time.RFC3339))
			fmt.Fprintf(out, "%s\t%s\n", c.tr.Msg(config.TKeyLblCandles), times.CandleLighting.In(loc).Format(time.RFC3339))
			fmt.Fprintf(out, "%s\t%s\n", c.tr.Msg(config.TKeyLblHavdalah), times.Havdalah.In(loc).Format(time.RFC3339))
			return nil
		},
	}
}
