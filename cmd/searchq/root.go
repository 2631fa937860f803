// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/coregx/searchq/internal/audit"
	"github.com/coregx/searchq/internal/codec"
	"github.com/coregx/searchq/internal/config"
	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/prepare"
	"github.com/coregx/searchq/internal/store"
)

const defaultConfigPath = "searchq.yaml"

// app holds what every subcommand shares: output streams, the loaded
// configuration and the logger built from it.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	user       string

	cfg     *config.Config
	log     logger.Logger
	auditor *audit.Auditor
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "searchq",
		Short:         "Compose search requests from contributor files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.user, "user", os.Getenv("USER"), "caller identity recorded in audit events")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(a.stdout, version)
		},
	}

	rootCmd.AddCommand(
		newBuildCmd(a),
		newExceptCmd(a),
		newValidateCmd(a),
		newHistoryCmd(a),
		newInitCmd(a),
		versionCmd,
	)

	return rootCmd
}

// load reads the config file and builds the logger. A missing file at the
// default path yields the default configuration.
func (a *app) load(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.LoadFromFile(a.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return err
		}
		cfg = config.DefaultConfig()
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}

	log, err := cfg.Logging.NewLogger(a.stderr)
	if err != nil {
		return err
	}
	auditor, err := cfg.Logging.NewAuditor(log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.auditor = auditor
	return nil
}

// pipeline returns the configured pipeline. Keywords given on the command
// line are contributed to q ahead of the configured contributors. Every
// phase is audited before hooks run.
func (a *app) pipeline(keywords []string, hooks []prepare.PhaseHook, opts ...prepare.Option) *prepare.Pipeline {
	hooks = append([]prepare.PhaseHook{a.auditor.Hook()}, hooks...)
	opts = append([]prepare.Option{
		prepare.WithDefaults(a.cfg.BuilderOptions()...),
		prepare.WithLogger(a.log),
		prepare.WithSanitizer(a.cfg.Logging.NewSanitizer()),
		prepare.WithPhaseHook(prepare.ChainHooks(hooks...)),
	}, opts...)

	p := prepare.New(opts...)
	if len(keywords) > 0 {
		config.ContributorConfig{
			Name:        "keywords",
			Part:        config.PartBasic,
			Expressions: keywords,
		}.Register(p)
	}
	a.cfg.Register(p)
	return p
}

// openStore opens the snapshot store described by the store section.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	sc := a.cfg.Store

	c, err := codec.ForName(sc.Format)
	if err != nil {
		return nil, err
	}

	opts := []store.Option{
		store.WithCodec(c),
		store.WithTable(sc.Table),
		store.WithLogger(a.log),
	}
	if sc.HealthCheck > 0 {
		opts = append(opts, store.WithHealthCheck(sc.HealthCheck))
	}
	if sc.CacheCapacity > 0 {
		opts = append(opts, store.WithCacheCapacity(sc.CacheCapacity))
	}

	return store.Open(ctx, sc.Driver, sc.DSN, opts...)
}

func (a *app) sync() {
	if z, ok := a.log.(*logger.ZapAdapter); ok {
		_ = z.Sync()
	}
}

// runContext returns the command context carrying the audit identity,
// canceled on interrupt.
func (a *app) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.user != "" {
		ctx = audit.WithUser(ctx, a.user)
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
