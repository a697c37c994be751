package main

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/Fantom-foundation/segpipe/face/udpface"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/responder"
)

var echoCmd = &cobra.Command{
	Use:   "echo",
	Short: "Answer any name under a namespace with a signed greeting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		namespace, err := requireString(v, "namespace")
		if err != nil {
			return err
		}
		prefix, err := name.Parse(namespace)
		if err != nil {
			return err
		}
		keys, err := loadKeys(v.GetString("key"))
		if err != nil {
			return err
		}

		p, err := udpface.Listen(v.GetString("listen"))
		if err != nil {
			return err
		}
		defer p.Close()

		r := responder.NewEcho(responderConfig(v), prefix, keys)
		if err := r.Start(p); err != nil {
			return err
		}
		defer r.Stop()
		log.Info("Serving", "prefix", prefix, "addr", p.Addr())

		waitInterrupt()
		log.Info("Stopped", "served", r.Served())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(echoCmd)

	echoCmd.Flags().StringP("namespace", "n", "", "namespace to listen under")
	echoCmd.Flags().DurationP("delay", "d", 0, "delay before each reply")
	echoCmd.Flags().Int("workers", responder.DefaultConfig().Workers, "number of reply workers")
	echoCmd.Flags().String("listen", ":6363", "UDP address to listen on")
	echoCmd.Flags().String("key", "", "signing key file, default = ephemeral key")
}
