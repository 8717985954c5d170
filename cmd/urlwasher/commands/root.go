// Package commands implements the urlwasher CLI.
package commands

import (
	"io"
	"strings"

	"github.com/getlantern/golog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getlantern/urlwasher"
)

var (
	log = golog.LoggerFor("urlwasher-cli")
)

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Settings come from flags and
// URLWASHER_* environment variables.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("URLWASHER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "urlwasher",
		Short: "Remove tracking from links",
		Long: `urlwasher strips tracking parameters from links and resolves the short
links hiding where they point.

Examples:
  # Wash a link
  urlwasher wash "https://youtu.be/lSwnPoo9ZK0?si=TrackingParamValue&t=65"

  # Wash everything in a text
  pbpaste | urlwasher wash | pbcopy

  # Run a mixer other washers can resolve redirects through
  urlwasher serve --addr 0.0.0.0:7777`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var debugOut io.Writer = io.Discard
			if v.GetBool("debug") {
				debugOut = cmd.ErrOrStderr()
			}
			golog.SetOutputs(cmd.ErrOrStderr(), debugOut)
		},
	}

	root.PersistentFlags().String("config", "", "washer config file (YAML or JSON)")
	root.PersistentFlags().String("mixer", "", "mixer instance, overrides the config file")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("mixer", root.PersistentFlags().Lookup("mixer"))
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(
		newWashCommand(v),
		newServeCommand(v),
		newRulesCommand(),
		newConfigCommand(),
	)
	return root
}

// loadConfig reads the washer config named by the settings, falling back to
// the default config when none is named.
func loadConfig(v *viper.Viper) (*urlwasher.Config, error) {
	cfg := urlwasher.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := urlwasher.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return withMixerOverride(v, cfg)
}

func withMixerOverride(v *viper.Viper, cfg *urlwasher.Config) (*urlwasher.Config, error) {
	mixer := v.GetString("mixer")
	if mixer == "" {
		return cfg, nil
	}
	u, err := urlwasher.ParseMixerInstance(mixer)
	if err != nil {
		return nil, err
	}
	return &urlwasher.Config{
		MixerInstance:  u,
		RedirectPolicy: cfg.RedirectPolicy,
	}, nil
}
