package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/rewind/internal/cli"
	"github.com/aretw0/rewind/internal/presentation/graph"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sessions, err := stack.Service.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}

		slices.Sort(sessions)
		fmt.Fprintln(out, "Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the view of a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		view, err := stack.Service.View(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling view: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show every document of a session's history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sess, err := stack.Service.Timeline(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		md := cli.TimelineMarkdown(sess, stack.Service.Engine().Slices())
		if raw, _ := cmd.Flags().GetBool("raw"); !raw {
			if rendered, err := cli.NewRenderer()(md); err == nil {
				md = rendered
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

var sessionGraphCmd = &cobra.Command{
	Use:   "graph <session-id>",
	Short: "Print a session's history as a Mermaid flowchart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sess, err := stack.Service.Timeline(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(sess, stack.Service.Engine().Slices()))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id]...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if len(args) == 0 && !all {
			return fmt.Errorf("specify session IDs or --all")
		}

		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		if all {
			if args, err = stack.Service.List(cmd.Context()); err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, sessionID := range args {
			if err := stack.Service.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Fprintf(out, "Error removing '%s': %v\n", sessionID, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "Removed session '%s'\n", sessionID)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionGraphCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionHistoryCmd.Flags().Bool("raw", false, "Print markdown without terminal rendering")
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}
