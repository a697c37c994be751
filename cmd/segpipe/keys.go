package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Fantom-foundation/segpipe/signer"
)

// loadKeys reads the key file, or generates an ephemeral key if file is empty.
func loadKeys(file string) (*signer.KeyChain, error) {
	if file == "" {
		keys, err := signer.Generate()
		if err != nil {
			return nil, err
		}
		log.Info("Using ephemeral key", "key", keys)
		return keys, nil
	}
	keys, err := signer.Load(file)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded key", "key", keys, "file", file)
	return keys, nil
}

// trustedKeys resolves --trust values to public keys. A value is either a
// 0x-prefixed public key as printed by keygen, or a key file.
func trustedKeys(values []string) ([][]byte, error) {
	keys := make([][]byte, 0, len(values))
	for _, v := range values {
		if strings.HasPrefix(v, "0x") {
			pub, err := hexutil.Decode(v)
			if err != nil {
				return nil, errors.Wrapf(err, "trusted key %s", v)
			}
			keys = append(keys, pub)
			continue
		}
		k, err := signer.Load(v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k.PublicKey())
	}
	return keys, nil
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key file for serve --key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := requireString(v, "out")
		if err != nil {
			return err
		}
		keys, err := signer.Generate()
		if err != nil {
			return err
		}
		if err := keys.Save(out); err != nil {
			return err
		}
		fmt.Printf("key %s\npublic %s\n", keys, hexutil.Encode(keys.PublicKey()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().String("out", "", "key file to write")
}
