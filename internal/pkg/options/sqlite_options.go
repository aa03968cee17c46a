package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// SQLiteOptions configures the durable relational store.
type SQLiteOptions struct {
	Path          string `json:"path"            mapstructure:"path"`
	BusyTimeoutMS int    `json:"busy-timeout-ms" mapstructure:"busy-timeout-ms"`
}

// NewSQLiteOptions creates SQLiteOptions with defaults.
func NewSQLiteOptions() *SQLiteOptions {
	return &SQLiteOptions{
		Path:          "data/ssai.db",
		BusyTimeoutMS: 5000,
	}
}

// Validate checks the options.
func (o *SQLiteOptions) Validate() []error {
	var errs []error
	if o.Path == "" {
		errs = append(errs, fmt.Errorf("sqlite.path is required"))
	}
	return errs
}

// AddFlags adds flags for the sqlite options to the given flag set.
func (o *SQLiteOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Path, "sqlite.path", o.Path, "SQLite database file path (':memory:' for ephemeral).")
	fs.IntVar(&o.BusyTimeoutMS, "sqlite.busy-timeout-ms", o.BusyTimeoutMS, "SQLite busy timeout in milliseconds.")
}
