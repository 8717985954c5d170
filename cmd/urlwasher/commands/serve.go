package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getlantern/urlwasher"
	"github.com/getlantern/urlwasher/mixer"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a mixer",
		Long: `Serve GET /wash?url=<url> so that other washers can resolve redirects
through this one. When --config is set the file is watched and changes
apply without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			washer := urlwasher.NewWasher(cfg)

			if path := v.GetString("config"); path != "" {
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()
				go func() {
					err := urlwasher.WatchConfigFile(ctx, path, func(cfg *urlwasher.Config) {
						cfg, err := withMixerOverride(v, cfg)
						if err != nil {
							log.Errorf("Ignoring reloaded config: %v", err)
							return
						}
						washer.SetConfig(cfg)
					})
					if err != nil {
						log.Errorf("Not watching %v: %v", path, err)
					}
				}()
			}

			opts := mixer.DefaultOptions()
			opts.RateLimit = v.GetBool("serve.rate-limit")
			opts.Timeout = v.GetDuration("serve.timeout")
			return mixer.New(washer, opts).ListenAndServe(v.GetString("serve.addr"))
		},
	}
	defaults := mixer.DefaultOptions()
	cmd.Flags().String("addr", "0.0.0.0:7777", "address to listen on")
	cmd.Flags().Bool("rate-limit", defaults.RateLimit, "limit requests per client")
	cmd.Flags().Duration("timeout", defaults.Timeout, "give up washing a url after this long")
	_ = v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("serve.rate-limit", cmd.Flags().Lookup("rate-limit"))
	_ = v.BindPFlag("serve.timeout", cmd.Flags().Lookup("timeout"))
	return cmd
}
