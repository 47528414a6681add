// Package cmd holds the cobra command tree of the yahrzeit binary.
package cmd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/locale"
	"github.com/tartampluch/go-yahrzeit/internal/zmanim"
)

// cli is the state shared by every subcommand once the root pre-run has
// loaded the settings.
type cli struct {
	configPath string
	debug      bool

	settings  *config.Settings
	tr        *locale.Translator
	logCloser io.Closer

	// now is the clock behind "today". Nil means time.Now.
	now func() time.Time
	// sunset backs the times command. Nil means zmanim.MeeusSunset.
	sunset zmanim.SunsetProvider
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	c := &cli{}
	defer c.close()
	return newRootCmd(c).ExecuteContext(ctx)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   config.BinaryName,
		Short: "Hebrew calendar conversions and yahrzeit dates",
		Long: `yahrzeit converts between the Gregorian and Hebrew calendars, resolves
the yearly observance of a death anniversary, and serves an iCalendar feed of
yahrzeits built from a vCard address book.

Settings come from an optional YAML file and the environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for commands that need no settings
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, config.FlagConfig, "c", "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		c.convertCmd(),
		c.hebrewCmd(),
		c.yearCmd(),
		c.nextCmd(),
		c.upcomingCmd(),
		c.todayCmd(),
		c.timesCmd(),
		c.serveCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	s, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.settings = s
	c.tr = locale.New(s.Language)
	c.logCloser = setupLogging(c.debug, s.LogFormat, cmd.Name() == serveName)

	slog.Debug(config.MsgSettingsLoaded,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyConfigFile, c.configPath,
		config.LogKeyTimezone, s.SiteTimezone,
		config.LogKeyLocation, s.CalendarLocation,
		config.LogKeyPolicy, s.AdarPolicy,
	)
	return nil
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
		c.logCloser = nil
	}
}

// today is the civil date in the site timezone.
func (c *cli) today() (calendar.GregorianDate, error) {
	loc, err := c.settings.Location()
	if err != nil {
		return calendar.GregorianDate{}, err
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return calendar.FromTime(now().In(loc)), nil
}

// dateOrToday parses s, or returns today when s is empty.
func (c *cli) dateOrToday(s string) (calendar.GregorianDate, error) {
	if s == "" {
		return c.today()
	}
	return calendar.ParseGregorian(s)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
