package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"warden/internal/agent/ports"
	"warden/internal/guard"
)

// newCheckCmd reports whether a path is reachable through the guard.
func newCheckCmd(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Check a path against the sandbox root and .ignore policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			resolved, err := a.paths.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("denied: %w", err)
			}
			if a.ignore.Blocked(resolved, a.paths.Root()) {
				return fmt.Errorf("denied: %s is blocked by .ignore policy", resolved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s\n", resolved)
			return nil
		},
	}
}

// newToolsCmd prints the guarded tool definitions, aliases included.
func newToolsCmd(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List tool definitions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(a.registry.List(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// newCallCmd executes one guarded tool call.
func newCallCmd(flags *appFlags) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Execute a guarded tool call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			tool, err := a.registry.Get(args[0])
			if err != nil {
				return err
			}
			callArgs, err := guard.ParseArguments(rawArgs)
			if err != nil {
				return err
			}

			call := ports.ToolCall{
				ID:        uuid.NewString(),
				Name:      args[0],
				Arguments: callArgs,
			}
			result, err := tool.Execute(cmd.Context(), call)
			if err != nil {
				return err
			}
			if result != nil && result.Error != nil {
				return result.Error
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&rawArgs, "args", "", "tool arguments as JSON")
	return cmd
}
