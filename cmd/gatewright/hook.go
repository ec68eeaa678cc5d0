package main

import (
	"context"
	"fmt"

	"github.com/gatewright/gatewright/internal/artifact"
	"github.com/gatewright/gatewright/internal/gate"
	"github.com/gatewright/gatewright/internal/hook"
	"github.com/gatewright/gatewright/internal/session"
	"github.com/spf13/cobra"
)

func hookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Handle agent runtime hook calls",
		Long:  "Handle agent runtime hook calls: each subcommand reads one JSON payload from stdin and writes one JSON decision to stdout.",
	}
	cmd.AddCommand(hookSessionStartCmd())
	cmd.AddCommand(hookPreToolUseCmd())
	cmd.AddCommand(hookPostToolUseCmd())
	cmd.AddCommand(hookStopCmd())
	return cmd
}

// hookEnv is everything one hook invocation needs: the serialized store
// and a handler wired to the project config.
type hookEnv struct {
	store   *session.SQLiteStore
	handler *hook.Handler
	cleanup func()
}

func openHookEnv(ctx context.Context, sessionID string) (*hookEnv, error) {
	repoRoot, err := projectRoot(ctx)
	if err != nil {
		return nil, err
	}
	lock, err := session.AcquireLock(stateDir(repoRoot))
	if err != nil {
		return nil, err
	}
	storeDB, closeDB, err := openDB(repoRoot)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	cleanup := func() {
		closeDB()
		_ = lock.Release()
	}

	cfg, err := loadConfig(repoRoot)
	if err != nil {
		cleanup()
		return nil, err
	}
	post, err := cfg.Runners(cfg.Gates.PostAction.Validators)
	if err != nil {
		cleanup()
		return nil, err
	}
	completion, err := cfg.Runners(cfg.Gates.Completion.Validators)
	if err != nil {
		cleanup()
		return nil, err
	}

	store := session.NewSQLiteStore(storeDB)
	pipeline, err := gate.NewPipeline(gate.Options{
		Classifier:       artifact.NewClassifier(cfg.Conventions),
		Session:          session.New(sessionID, store),
		ProjectRoot:      repoRoot,
		PostAction:       post,
		Completion:       completion,
		Auditor:          store,
		DisableTestFirst: !cfg.Gates.PreAction.Enabled,
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	return &hookEnv{store: store, handler: hook.NewHandler(pipeline), cleanup: cleanup}, nil
}

func sessionIDOf(p hook.Payload) string {
	if p.SessionID != "" {
		return p.SessionID
	}
	return "default"
}

func hookSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session-start",
		Short: "Reset session state at the start of an agent session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, _ := hook.Decode(cmd.InOrStdin())

			env, err := openHookEnv(ctx, sessionIDOf(payload))
			if err != nil {
				return err
			}
			defer env.cleanup()

			if err := env.store.Reset(ctx, sessionIDOf(payload)); err != nil {
				return fmt.Errorf("reset session: %w", err)
			}
			return hook.Write(cmd.OutOrStdout(), hook.Response{Decision: "allow"})
		},
	}
}

func hookPreToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pre-tool-use",
		Short: "Gate a tool call before it runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, ok := hook.Decode(cmd.InOrStdin())
			if !ok {
				return hook.Write(cmd.OutOrStdout(), hook.Response{Decision: "allow"})
			}

			env, err := openHookEnv(ctx, sessionIDOf(payload))
			if err != nil {
				return err
			}
			defer env.cleanup()

			return hook.Write(cmd.OutOrStdout(), env.handler.PreToolUse(ctx, payload))
		},
	}
}

func hookPostToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post-tool-use",
		Short: "Gate the aftermath of a tool call",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, ok := hook.Decode(cmd.InOrStdin())
			if !ok {
				return hook.Write(cmd.OutOrStdout(), hook.Response{Decision: "allow"})
			}

			env, err := openHookEnv(ctx, sessionIDOf(payload))
			if err != nil {
				return err
			}
			defer env.cleanup()

			return hook.Write(cmd.OutOrStdout(), env.handler.PostToolUse(ctx, payload))
		},
	}
}

func hookStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Gate the agent's attempt to finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, _ := hook.Decode(cmd.InOrStdin())

			env, err := openHookEnv(ctx, sessionIDOf(payload))
			if err != nil {
				return err
			}
			defer env.cleanup()

			return hook.Write(cmd.OutOrStdout(), env.handler.Stop(ctx))
		},
	}
}
