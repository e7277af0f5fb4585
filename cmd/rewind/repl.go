package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/cli"
)

var replCmd = &cobra.Command{
	Use:   "repl [session-id]",
	Short: "Edit a session interactively",
	Long: `Opens (or creates) a session and reads commands from standard input.
Without a session ID a new one is generated. Type 'help' inside the REPL for commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		cmd.SetContext(sigCtx)

		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sessionID := ""
		if len(args) > 0 {
			sessionID = args[0]
		}

		headless, _ := cmd.Flags().GetBool("headless")
		interactive := !headless && cli.IsTerminal(os.Stdin) && cli.IsTerminal(os.Stdout)

		r := rewind.NewRunner(cli.NewInterruptibleReader(os.Stdin, sigCtx.Done()), os.Stdout)
		r.Headless = headless
		if interactive {
			cli.PrintBanner(os.Stdout, rewind.Version)
			r.Renderer = cli.NewRenderer()
		}

		err = r.Run(sigCtx, stack.Service, sessionID)
		if sigCtx.Signal() != nil && !headless {
			cli.PrintSystemMessage(os.Stdout, "Interrupted.")
		}
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().Bool("headless", false, "Print one JSON view per line, without prompts")
}
