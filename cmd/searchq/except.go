// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/coregx/searchq/internal/codec"
)

func newExceptCmd(a *app) *cobra.Command {
	var (
		field  string
		sayt   bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "except <fragment> [keywords...]",
		Short: "Print the combined expression without a fragment",
		Long: "Run the query phase, then print the combined expression parts with every\n" +
			"occurrence of fragment removed. With --field, print the group-by request a\n" +
			"facet on that field would send to count values without its own filter.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			defer a.sync()

			out, err := outputCodec(format, true)
			if err != nil {
				return err
			}

			ctx, cancel := a.runContext(cmd)
			defer cancel()

			prepared, err := a.pipeline(args[1:], nil).Run(ctx, sayt)
			if err != nil {
				return err
			}

			except := args[0]
			if field != "" {
				return a.write(out, prepared.Builder.GroupByExcept(field, except))
			}
			return a.write(out, prepared.Builder.ComputeCompleteExpressionPartsExcept(except))
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "print the group-by request for this field")
	cmd.Flags().BoolVar(&sayt, "sayt", false, "run a search-as-you-type phase")
	cmd.Flags().StringVarP(&format, "output", "o", codec.FormatJSON, "output format: json or msgpack")

	return cmd
}
