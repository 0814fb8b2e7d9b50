package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paranoid-AF/codelet"
)

func newConfigCommand() *cobra.Command {
	var (
		showDefaults bool
		showPath     bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the effective configuration as JSON. Validation warnings go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				fmt.Fprintln(cmd.OutOrStdout(), codelet.ConfigPath())
				return nil
			}

			cfg := codelet.DefaultConfig()
			if !showDefaults {
				var err error
				if cfg, err = codelet.LoadConfig(); err != nil {
					return err
				}
				for _, w := range codelet.ValidateConfig(cfg) {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
				}
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDefaults, "defaults", false, "print the built-in defaults instead")
	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file path")
	return cmd
}
