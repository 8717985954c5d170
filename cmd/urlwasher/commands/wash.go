package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getlantern/urlwasher"
)

func newWashCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wash [text...]",
		Short: "Wash the links in the given text or stdin",
		Long: `Wash every link found in the arguments, joined by spaces, or in stdin
when no arguments are given. Everything that is not a link, whitespace
included, is printed back unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, v.GetDuration("wash.timeout"))
			defer cancel()

			tw := urlwasher.NewTextWasher(urlwasher.NewWasher(cfg))
			washed := tw.Wash(ctx, text)
			if len(args) > 0 {
				washed += "\n"
			}
			_, err = io.WriteString(cmd.OutOrStdout(), washed)
			return err
		},
	}
	cmd.Flags().Duration("timeout", 10*time.Second, "give up resolving redirects after this long")
	_ = v.BindPFlag("wash.timeout", cmd.Flags().Lookup("timeout"))
	return cmd
}
