package showcodes

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thoukydides/fantasiad"
	"github.com/thoukydides/fantasiad/environment"
	"github.com/thoukydides/fantasiad/fantasia"
)

func Command() *cobra.Command {
	var cpath string
	var frame bool

	cmd := &cobra.Command{
		Use:   "show-codes [FAN...]",
		Short: "Show the bits and raw codes sent for each button of the fans",
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := fantasiad.Load(cpath)
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				ids = cfg.FanIDs()
			}

			for _, id := range ids {
				fan, ok := cfg.Fans[id]
				if !ok {
					return fmt.Errorf("%s: %w", id, fantasiad.ErrUnknownFan)
				}

				fmt.Printf("%s (%s) %s\n", id, fan.Name, fan.Address.Serial())
				for _, b := range fantasia.Buttons() {
					word := fantasia.EncodeWord(b, fan.Address)

					tx := fantasia.EncodeTimings(word.Invert())
					if frame {
						tx = fantasia.EncodeFrame(word.Invert())
					}

					fmt.Printf("  %-8s %s  '%s'\n", b, word, tx.Code())
				}
			}

			return nil
		},
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", environment.GetEnvPath(environment.KeyConfig, "/etc/fantasiad/fantasiad.yml"), "Configfile path")
	cmd.Flags().BoolVarP(&frame, "frame", "f", false, "Only show a single frame instead of the repeated transmission")

	return cmd
}
