package main

import (
	"io/ioutil"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fantom-foundation/segpipe/face/udpface"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/responder"
	"github.com/Fantom-foundation/segpipe/segment"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the segments of an object",
	Long: `Serve pre-generates --count signed segments under --namespace, or the content
of --file split into --segment-size chunks, and answers requests for them.`,
	Args: cobra.NoArgs,
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

		db, err := openDB(v.GetString("db"), v.GetString("datadir"), v.GetInt("cache"), v.GetBool("reset"))
		if err != nil {
			return err
		}
		defer db.Close()

		storeCfg := segment.DefaultStoreConfig()
		store, err := segment.NewStore(db, storeCfg)
		if err != nil {
			return err
		}

		count, err := prepareSegments(v, prefix, store)
		if err != nil {
			return err
		}

		p, err := udpface.Listen(v.GetString("listen"))
		if err != nil {
			return err
		}
		defer p.Close()

		cfg := responderConfig(v)
		r := responder.New(cfg, prefix, store, count)
		if err := r.Start(p); err != nil {
			return err
		}
		defer r.Stop()
		log.Info("Serving", "prefix", prefix, "segments", count, "addr", p.Addr())

		waitInterrupt()
		log.Info("Stopped", "served", r.Served())
		return nil
	},
}

// prepareSegments fills the store unless it already holds the segments of prefix
// and --reuse is set. It returns the number of segments.
func prepareSegments(v *viper.Viper, prefix name.Name, store *segment.Store) (uint64, error) {
	if v.GetBool("reuse") {
		stored, count, ok, err := store.Header()
		if err != nil {
			return 0, err
		}
		if ok && stored.Equal(prefix) {
			log.Info("Reusing stored segments", "count", count)
			return count, nil
		}
	}

	keys, err := loadKeys(v.GetString("key"))
	if err != nil {
		return 0, err
	}

	cfg := segment.DefaultConfig()
	cfg.FreshnessPeriod = v.GetDuration("freshness")
	if file := v.GetString("file"); file != "" {
		payload, err := ioutil.ReadFile(file)
		if err != nil {
			return 0, errors.Wrap(err, "read content")
		}
		cfg.MaxCount, cfg.Content, err = segment.FromBytes(payload, v.GetInt("segment-size"))
		if err != nil {
			return 0, err
		}
	} else if cfg.MaxCount, err = nonNegative(v, "count"); err != nil {
		return 0, err
	}

	s, err := segment.New(cfg, prefix, keys, store)
	if err != nil {
		return 0, err
	}
	if err := s.Generate(); err != nil {
		return 0, errors.Wrap(err, "generate segments")
	}
	return s.Count(), nil
}

func responderConfig(v *viper.Viper) responder.Config {
	cfg := responder.DefaultConfig()
	cfg.Delay = v.GetDuration("delay")
	if n := v.GetInt("workers"); n > 0 {
		cfg.Workers = n
	}
	return cfg
}

func waitInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	<-sig
}

func init() {
	rootCmd.AddCommand(serveCmd)

	def := segment.DefaultConfig()
	serveCmd.Flags().StringP("namespace", "n", "", "namespace to serve under")
	serveCmd.Flags().Uint64P("count", "c", def.MaxCount, "number of segments to generate")
	serveCmd.Flags().String("file", "", "serve the content of a file instead of generated greetings")
	serveCmd.Flags().Int("segment-size", 4096, "segment size in bytes for --file")
	serveCmd.Flags().Duration("freshness", def.FreshnessPeriod, "freshness period of the segments")
	serveCmd.Flags().DurationP("delay", "d", 0, "delay before each reply")
	serveCmd.Flags().Int("workers", responder.DefaultConfig().Workers, "number of reply workers")
	serveCmd.Flags().String("listen", ":6363", "UDP address to listen on")
	serveCmd.Flags().String("db", "memory", "segment database: memory, leveldb or pebble")
	serveCmd.Flags().String("datadir", "", "database directory for leveldb and pebble")
	serveCmd.Flags().Int("cache", 16, "database cache in MiB")
	serveCmd.Flags().Bool("reuse", false, "serve the segments already in --datadir if they belong to --namespace")
	serveCmd.Flags().Bool("reset", false, "drop the segments stored in --datadir before generating")
	serveCmd.Flags().String("key", "", "signing key file, default = ephemeral key")
}
