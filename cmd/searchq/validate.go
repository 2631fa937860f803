// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coregx/searchq/internal/validate"
)

var errInvalidRequest = errors.New("request is invalid")

func newValidateCmd(a *app) *cobra.Command {
	var (
		expression string
		strict     bool
		sayt       bool
	)

	cmd := &cobra.Command{
		Use:   "validate [keywords...]",
		Short: "Lint the built request",
		Long: "Run the query phase and check the built request for unbalanced parentheses\n" +
			"or quotes, dangling operators and out-of-range paging. With --expression,\n" +
			"lint a single expression instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			defer a.sync()

			opts := a.cfg.ValidatorOptions()
			if cmd.Flags().Changed("strict") {
				opts = append(opts, validate.WithStrict(strict))
			}
			v := validate.NewValidator(opts...)

			var result validate.Result
			if cmd.Flags().Changed("expression") {
				issues := v.ValidateExpression("expression", expression)
				result = validate.Result{Valid: v.Valid(issues), Issues: issues}
			} else {
				ctx, cancel := a.runContext(cmd)
				defer cancel()

				prepared, err := a.pipeline(args, nil).Run(ctx, sayt)
				if err != nil {
					return err
				}
				result = v.Validate(prepared.Request)
				a.auditor.LogValidation(ctx, prepared.ID.String(), result)
			}

			for _, issue := range result.Issues {
				_, _ = fmt.Fprintln(a.stdout, issue.String())
			}
			if !result.Valid {
				return errInvalidRequest
			}
			_, _ = fmt.Fprintln(a.stdout, "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&expression, "expression", "", "lint this expression instead of the built request")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors (overrides validation.strict)")
	cmd.Flags().BoolVar(&sayt, "sayt", false, "run a search-as-you-type phase")

	return cmd
}
