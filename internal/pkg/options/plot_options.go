package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// PlotOptions configures the character content roots and the civil clock.
//
// Blob layout:
//
//	<plot-root>/<role_id>_plot/<YYYY-MM-DD>_<title>.txt   daily plot files
//	<summary-root>/<role_id>_summary.txt                  past-life summaries
//	<persona-root>/<role_id>_L0_prompt.txt                persona texts
type PlotOptions struct {
	PlotRoot        string `json:"plot-root"         mapstructure:"plot-root"`
	SummaryRoot     string `json:"summary-root"      mapstructure:"summary-root"`
	PersonaRoot     string `json:"persona-root"      mapstructure:"persona-root"`
	UTCOffsetHours  int    `json:"utc-offset-hours"  mapstructure:"utc-offset-hours"`
	ClockTTLMinutes int    `json:"clock-ttl-minutes" mapstructure:"clock-ttl-minutes"`
	WatchFiles      bool   `json:"watch-files"       mapstructure:"watch-files"`
}

// NewPlotOptions creates PlotOptions with defaults.
func NewPlotOptions() *PlotOptions {
	return &PlotOptions{
		PlotRoot:        "character_plots",
		SummaryRoot:     "character_summaries",
		PersonaRoot:     "character_personas",
		UTCOffsetHours:  8,
		ClockTTLMinutes: 30,
		WatchFiles:      true,
	}
}

// Validate checks the options.
func (o *PlotOptions) Validate() []error {
	var errs []error
	if o.PlotRoot == "" {
		errs = append(errs, fmt.Errorf("plot.plot-root is required"))
	}
	if o.PersonaRoot == "" {
		errs = append(errs, fmt.Errorf("plot.persona-root is required"))
	}
	if o.UTCOffsetHours < -12 || o.UTCOffsetHours > 14 {
		errs = append(errs, fmt.Errorf("plot.utc-offset-hours %d out of range", o.UTCOffsetHours))
	}
	if o.ClockTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("plot.clock-ttl-minutes must be positive"))
	}
	return errs
}

// AddFlags adds flags for the plot options to the given flag set.
func (o *PlotOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.PlotRoot, "plot.plot-root", o.PlotRoot, "Directory holding per-role daily plot files.")
	fs.StringVar(&o.SummaryRoot, "plot.summary-root", o.SummaryRoot, "Directory holding per-role life summaries.")
	fs.StringVar(&o.PersonaRoot, "plot.persona-root", o.PersonaRoot, "Directory holding per-role persona files.")
	fs.IntVar(&o.UTCOffsetHours, "plot.utc-offset-hours", o.UTCOffsetHours, "Civil zone offset used for the character clock.")
	fs.IntVar(&o.ClockTTLMinutes, "plot.clock-ttl-minutes", o.ClockTTLMinutes, "TTL of the cached civil time in the hot store.")
	fs.BoolVar(&o.WatchFiles, "plot.watch-files", o.WatchFiles, "Watch the plot root and invalidate parse caches on change.")
}
