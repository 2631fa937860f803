// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coregx/searchq/internal/codec"
	"github.com/coregx/searchq/internal/prepare"
)

type buildOptions struct {
	searchAsYouType bool
	format          string
	indent          bool
	expression      bool
	save            bool
	metrics         bool
	trace           bool
}

func newBuildCmd(a *app) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build [keywords...]",
		Short: "Run the query phase and print the request",
		Long: "Run every configured contributor on a fresh query builder and print the built request.\n" +
			"Keywords are added to the basic expression (q) before the configured contributors run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			defer a.sync()

			ctx, cancel := a.runContext(cmd)
			defer cancel()

			return a.build(ctx, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.searchAsYouType, "sayt", false, "build a search-as-you-type request")
	cmd.Flags().StringVarP(&opts.format, "output", "o", codec.FormatJSON, "output format: json or msgpack")
	cmd.Flags().BoolVar(&opts.indent, "indent", true, "indent json output")
	cmd.Flags().BoolVar(&opts.expression, "expression", false, "print the combined expression parts instead of the request")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save a snapshot of the request (implied by store.enabled)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print phase metrics to stderr")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "log phase and contributor spans at debug level")

	return cmd
}

func (a *app) build(ctx context.Context, keywords []string, opts buildOptions) error {
	out, err := outputCodec(opts.format, opts.indent)
	if err != nil {
		return err
	}

	var (
		pipelineOpts []prepare.Option
		hooks        []prepare.PhaseHook
	)

	if opts.trace {
		t, shutdown := newTracer(a.log)
		defer func() { _ = shutdown(context.Background()) }()
		pipelineOpts = append(pipelineOpts, prepare.WithTracer(t))
	}

	collector, reg := newMetrics()
	pipelineOpts = append(pipelineOpts, prepare.WithMetrics(collector))

	if opts.save || a.cfg.Store.Enabled {
		st, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		hooks = append(hooks, st.Hook())
	}

	prepared, err := a.pipeline(keywords, hooks, pipelineOpts...).Run(ctx, opts.searchAsYouType)
	if err != nil {
		return err
	}

	var v any = prepared.Request
	if opts.expression {
		v = prepared.Expression
	}
	if err := a.write(out, v); err != nil {
		return err
	}

	if opts.metrics {
		return writeMetrics(a.stderr, reg)
	}
	return nil
}

func outputCodec(format string, indent bool) (codec.Codec, error) {
	c, err := codec.ForName(format)
	if err != nil {
		return nil, err
	}
	if j, ok := c.(codec.JSON); ok && indent {
		j.Indent = "  "
		return j, nil
	}
	return c, nil
}

// write encodes v with c. Text formats get a trailing newline.
func (a *app) write(c codec.Codec, v any) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := a.stdout.Write(data); err != nil {
		return err
	}
	if c.Name() == codec.FormatJSON {
		_, err = fmt.Fprintln(a.stdout)
	}
	return err
}
