// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coregx/searchq/internal/codec"
	"github.com/coregx/searchq/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved request snapshots",
	}

	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryShowCmd(a),
		newHistoryDeleteCmd(a),
		newHistoryPingCmd(a),
	)

	return cmd
}

// withStore loads the config, opens the store and calls f.
func (a *app) withStore(cmd *cobra.Command, f func(st *store.Store) error) error {
	if err := a.load(cmd); err != nil {
		return err
	}
	defer a.sync()

	st, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	return f(st)
}

func newHistoryListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(st *store.Store) error {
				snaps, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tCREATED\tSAYT\tQ\tEXPRESSION")
				for _, s := range snaps {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						s.ID,
						s.CreatedAt.Format(time.RFC3339),
						strconv.FormatBool(s.SearchAsYouType),
						s.Q,
						s.Expression,
					)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of snapshots")

	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the request of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
			}
			out, err := outputCodec(format, true)
			if err != nil {
				return err
			}

			return a.withStore(cmd, func(st *store.Store) error {
				snap, err := st.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.write(out, snap.Request)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", codec.FormatJSON, "output format: json or msgpack")

	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, len(args))
			for i, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid snapshot id %q: %w", arg, err)
				}
				ids[i] = id
			}

			return a.withStore(cmd, func(st *store.Store) error {
				for _, id := range ids {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(a.stdout, "deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

func newHistoryPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the snapshot database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(st *store.Store) error {
				h := st.Ping(cmd.Context())
				if !h.Healthy {
					return fmt.Errorf("snapshot store unhealthy: %w", h.Err)
				}
				_, _ = fmt.Fprintln(a.stdout, "ok")
				return nil
			})
		},
	}
}
