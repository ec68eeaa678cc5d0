package main

import (
	"fmt"

	"github.com/gatewright/gatewright/internal/session"
	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect recorded sessions",
	}
	cmd.AddCommand(sessionsListCmd())
	cmd.AddCommand(sessionsLogCmd())
	cmd.AddCommand(sessionsTouchedCmd())
	return cmd
}

func sessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoRoot, err := projectRoot(ctx)
			if err != nil {
				return err
			}
			storeDB, closeFn, err := openDB(repoRoot)
			if err != nil {
				return err
			}
			defer closeFn()

			store := session.NewSQLiteStore(storeDB)
			sessions, err := store.Sessions(ctx)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
				return nil
			}
			for _, info := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", info.ID, info.StartedAt)
			}
			return nil
		},
	}
}

func sessionsLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <session-id>",
		Short: "Show the decision log of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoRoot, err := projectRoot(ctx)
			if err != nil {
				return err
			}
			storeDB, closeFn, err := openDB(repoRoot)
			if err != nil {
				return err
			}
			defer closeFn()

			store := session.NewSQLiteStore(storeDB)
			decisions, err := store.Decisions(ctx, args[0])
			if err != nil {
				return err
			}
			for _, rec := range decisions {
				line := fmt.Sprintf("%4d  %s  %-10s  %-5s  %-5s", rec.Seq, rec.Timestamp, rec.Phase, rec.Action, rec.Verdict)
				if rec.Path != "" {
					line += "  " + rec.Path
				}
				if rec.Reason != "" {
					line += "  " + rec.Reason
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func sessionsTouchedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touched <session-id>",
		Short: "Show the artifacts a session has touched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoRoot, err := projectRoot(ctx)
			if err != nil {
				return err
			}
			storeDB, closeFn, err := openDB(repoRoot)
			if err != nil {
				return err
			}
			defer closeFn()

			store := session.NewSQLiteStore(storeDB)
			touched, err := store.Touched(ctx, args[0])
			if err != nil {
				return err
			}
			for _, path := range touched {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
}
