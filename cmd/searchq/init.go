// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/coregx/searchq/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Write the default configuration with a sample search box contributor to the --config path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(a.configPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			cfg := config.DefaultConfig()
			cfg.Contributors = []config.ContributorConfig{
				{Name: "searchbox", Part: config.PartBasic},
			}
			if err := cfg.SaveToFile(a.configPath); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.stdout, "wrote %s\n", a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
