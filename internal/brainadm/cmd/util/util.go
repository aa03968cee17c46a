// Package util shares option loading and module wiring between the
// brainadm subcommands.
package util

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Missonix/SSAI-brain/internal/brain/options"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/inmemory"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
)

// LoadOptions reads the braind YAML config file into an Options aggregate.
// An empty path returns the defaults.
func LoadOptions(cfgFile string) (*options.Options, error) {
	opts := options.NewOptions()
	if cfgFile == "" {
		return opts, nil
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %q: %w", cfgFile, err)
	}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("unmarshal config file %q: %w", cfgFile, err)
	}
	return opts, nil
}

// OpenDB opens the durable store named by the options.
func OpenDB(opts *options.Options) (*sqlite.DB, error) {
	return sqlite.Open(opts.SQLiteOptions.Path, opts.SQLiteOptions.BusyTimeoutMS)
}

// BuildRoleplay assembles an offline roleplay module: sqlite durable tier,
// in-memory hot tier, the configured default model as generator and no
// tools. Admin commands run against the same stores the daemon uses, so
// the daemon should be stopped first.
func BuildRoleplay(ctx context.Context, opts *options.Options) (*roleplay.Module, *sqlite.DB, error) {
	llmCfg := &llm.Config{
		ModelOptions: opts.ModelOptions,
	}
	llmModule, err := llmCfg.Complete().New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize LLM module: %w", err)
	}

	db, err := OpenDB(opts)
	if err != nil {
		return nil, nil, err
	}

	// Admin runs never watch plot files.
	plotOpts := *opts.PlotOptions
	plotOpts.WatchFiles = false

	rpCfg := &roleplay.Config{
		PlotOptions: &plotOpts,
		Hot:         inmemory.NewHotStore(),
		DB:          db,
		Gen:         llmModule.Completer(),
	}
	completed, err := rpCfg.Complete()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	module, err := completed.New(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return module, db, nil
}
