package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Fantom-foundation/segpipe/face/udpface"
	"github.com/Fantom-foundation/segpipe/fetcher"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
	"github.com/Fantom-foundation/segpipe/signer"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the segments of a name",
	Long: `Fetch requests segments <uri>/0, <uri>/1, ... keeping --pipe requests in flight,
until --count segments are requested or the final segment arrives.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		uri, err := requireString(v, "uri")
		if err != nil {
			return err
		}
		prefix, err := name.Parse(uri)
		if err != nil {
			return err
		}

		cfg := fetcher.DefaultConfig()
		cfg.Pipeline = v.GetInt("pipe")
		if cfg.Count, err = nonNegative(v, "count"); err != nil {
			return err
		}
		if cfg.Start, err = nonNegative(v, "start"); err != nil {
			return err
		}
		cfg.Lifetime = v.GetDuration("lifetime")
		cfg.MaxRetries = v.GetInt("retries")
		if err := cfg.Validate(); err != nil {
			return err
		}

		var callbacks fetcher.Callbacks
		trusted, err := trustedKeys(v.GetStringSlice("trust"))
		if err != nil {
			return err
		}
		if v.GetBool("verify") || len(trusted) != 0 {
			if len(trusted) == 0 {
				log.Warn("No --trust keys, any correctly signed segment passes")
			}
			callbacks.Verify = signer.NewValidator(trusted...).Verify
		}

		var out *orderedWriter
		if file := v.GetString("output"); file != "" {
			f, err := os.Create(file)
			if err != nil {
				return errors.Wrap(err, "create output")
			}
			defer f.Close()
			out = newOrderedWriter(f, cfg.Start)
			callbacks.OnSegment = func(seg uint64, d *packet.Data) {
				out.Add(seg, d.Content)
			}
		} else {
			callbacks.OnSegment = func(seg uint64, d *packet.Data) {
				fmt.Printf("Received data: %s\n", d.Content)
			}
		}

		c, err := udpface.Dial(v.GetString("addr"), cfg.Pipeline)
		if err != nil {
			return err
		}
		defer c.Close()

		f, err := fetcher.New(cfg, prefix, c, callbacks)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := f.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if out != nil {
			if out.Err() != nil {
				return errors.Wrap(out.Err(), "write output")
			}
			if gaps := out.Gaps(); gaps != 0 {
				log.Warn("Segments after a missing one were not written", "held", gaps)
			}
		}
		if res.Aborted {
			log.Warn("Retrieval incomplete", "uri", prefix, "delivered", res.Delivered)
			return nil
		}
		log.Info("Retrieval finished", "uri", prefix, "delivered", res.Delivered, "requested", res.Requested, "complete", res.Complete)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	def := fetcher.DefaultConfig()
	fetchCmd.Flags().StringP("uri", "u", "", "name to retrieve")
	fetchCmd.Flags().IntP("pipe", "p", def.Pipeline, "number of requests to pipeline")
	fetchCmd.Flags().Uint64P("count", "c", 0, "number of (unique) segments to request, default = until final segment")
	fetchCmd.Flags().Uint64("start", 0, "first segment to request")
	fetchCmd.Flags().StringP("output", "o", "", "write the payload in segment order to a file instead of printing it")
	fetchCmd.Flags().String("addr", "127.0.0.1:6363", "producer address")
	fetchCmd.Flags().Duration("lifetime", def.Lifetime, "request lifetime")
	fetchCmd.Flags().Int("retries", def.MaxRetries, "resends per segment before giving up")
	fetchCmd.Flags().Bool("verify", false, "verify segment signatures")
	fetchCmd.Flags().StringSlice("trust", nil, "trusted producer key: a key file or a 0x-prefixed public key, implies --verify")
}
