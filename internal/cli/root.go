package cli

import (
	"os"

	"github.com/spf13/cobra"

	"askhr/internal/config"
)

// NewRootCmd builds the askhr command tree. Configuration is resolved once per
// invocation: file, then ASKHR_* environment, then flags.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		a       *app
	)
	root := &cobra.Command{
		Use:           "askhr",
		Short:         "askhr answers HR policy questions from your own documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.AppConfig
				err error
			)
			if cfgFile != "" {
				cfg, err = config.Load(cfgFile)
			} else {
				cfg, _, err = config.LoadDefault()
			}
			if err != nil {
				return err
			}
			cfg.ApplyFlags(cmd.Flags())
			a, err = newApp(cfg)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml or ~/.config/askhr/config.yaml)")
	config.BindFlags(root.PersistentFlags())

	current := func() *app { return a }
	root.AddCommand(
		newBuildCmd(current),
		newQueryCmd(current),
		newAskCmd(current),
		newClearCmd(current),
		newDocsCmd(current),
		newChatCmd(current),
		newServeCmd(current),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}
