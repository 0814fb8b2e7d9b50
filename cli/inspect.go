package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newContextCommand() *cobra.Command {
	var (
		flags  requestFlags
		asTOML bool
	)

	cmd := &cobra.Command{
		Use:   "context FILE",
		Short: "Print the context record gathered at the cursor",
		Long:  "Print the context record gathered at the cursor as JSON, or as a TOML entry with --toml. FILE may be - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, args[0])
			if err != nil {
				return err
			}

			engine := newEngine()
			defer engine.Close()

			rec, prompt, err := engine.Inspect(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asTOML {
				return writeEntry(cmd.OutOrStdout(), req, rec, prompt)
			}
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("encode context: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print a TOML entry with the request, context and prompt")
	return cmd
}

func newPromptCommand() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "prompt FILE",
		Short: "Print the prompt that would be sent for the cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, args[0])
			if err != nil {
				return err
			}

			engine := newEngine()
			defer engine.Close()

			_, prompt, err := engine.Inspect(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
