package options

import (
	genericoptions "github.com/Missonix/SSAI-brain/internal/pkg/options"
	"github.com/Missonix/SSAI-brain/internal/pkg/server"
	"github.com/Missonix/SSAI-brain/pkg/utils/cliflag"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

type Options struct {
	GenericServerRunOptions *genericoptions.ServerRunOptions `json:"serving" mapstructure:"serving"`
	ModelOptions            *genericoptions.ModelOptions     `json:"models"  mapstructure:"models"`
	RedisOptions            *genericoptions.RedisOptions     `json:"redis"   mapstructure:"redis"`
	SQLiteOptions           *genericoptions.SQLiteOptions    `json:"sqlite"  mapstructure:"sqlite"`
	PlotOptions             *genericoptions.PlotOptions      `json:"plot"    mapstructure:"plot"`
	ToolOptions             *genericoptions.ToolOptions      `json:"tools"   mapstructure:"tools"`
	MCPOptions              *MCPOptions                      `json:"mcp"     mapstructure:"mcp"`
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.GenericServerRunOptions.AddFlags(fss.FlagSet("generic"))
	o.ModelOptions.AddFlags(fss.FlagSet("models"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))
	o.SQLiteOptions.AddFlags(fss.FlagSet("sqlite"))
	o.PlotOptions.AddFlags(fss.FlagSet("plot"))
	o.ToolOptions.AddFlags(fss.FlagSet("tools"))
	o.MCPOptions.AddFlags(fss.FlagSet("mcp"))
	return fss
}

func NewOptions() *Options {
	return &Options{
		GenericServerRunOptions: genericoptions.NewServerRunOptions(),
		ModelOptions:            genericoptions.NewModelOptions(),
		RedisOptions:            genericoptions.NewRedisOptions(),
		SQLiteOptions:           genericoptions.NewSQLiteOptions(),
		PlotOptions:             genericoptions.NewPlotOptions(),
		ToolOptions:             genericoptions.NewToolOptions(),
		MCPOptions:              NewMCPOptions(),
	}
}

// ApplyTo applies the run options to the method receiver and returns self.
func (o *Options) ApplyTo(c *server.Config) error {
	return nil
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}

// Complete set default Options.
func (o *Options) Complete() error {
	return nil
}

// Validate collects the validation errors of every option group.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.GenericServerRunOptions.Validate()...)
	errs = append(errs, o.ModelOptions.Validate()...)
	errs = append(errs, o.RedisOptions.Validate()...)
	errs = append(errs, o.SQLiteOptions.Validate()...)
	errs = append(errs, o.PlotOptions.Validate()...)
	errs = append(errs, o.ToolOptions.Validate()...)
	if err := o.MCPOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
