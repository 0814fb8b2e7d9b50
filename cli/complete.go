package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newCompleteCommand() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "complete FILE",
		Short: "Ask the model for a completion at the cursor",
		Long:  "Ask the model for a completion at the cursor and print it. Output is highlighted when stdout is a terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, args[0])
			if err != nil {
				return err
			}
			req.Manual = true

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			engine := newEngine()
			defer engine.Close()

			resp := engine.Complete(ctx, req)
			if resp.Error != nil {
				return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
			}

			out := cmd.OutOrStdout()
			completion := resp.Completion
			if isTerminal(out) {
				completion = highlight(completion, req.LanguageID)
			}
			fmt.Fprintln(out, completion)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
