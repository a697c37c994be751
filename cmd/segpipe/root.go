package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	config    string
	verbosity int
}

var rootCmd = &cobra.Command{
	Use:   "segpipe",
	Short: "Pipelined retrieval of named, signed segments",
	Long: `segpipe splits an object into independently named and signed segments,
serves them, and fetches them back through a window of concurrent requests.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(rootFlags.verbosity)
		return nil
	},
}

// Execute runs the command line and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(verbosity int) {
	log.Root().SetHandler(log.LvlFilterHandler(
		log.Lvl(verbosity),
		log.StreamHandler(os.Stderr, log.TerminalFormat(false))))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.config, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().IntVar(&rootFlags.verbosity, "verbosity", int(log.LvlInfo), "log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace")
}
