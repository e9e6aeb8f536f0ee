package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/adapters/redis"
	"github.com/aretw0/loom/pkg/persistence/middleware"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/spf13/cobra"
)

// encryptionKeyEnv holds the hex AES-256 key when --encryption-key is unset.
const encryptionKeyEnv = "LOOM_ENCRYPTION_KEY"

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis", "", "Redis address (host:port) for persistent sessions")
	cmd.Flags().String("encryption-key", "", "Hex AES-256 key sealing stored session values (or $"+encryptionKeyEnv+")")
}

// storeOptions builds the session store selected by the flags. The returned
// func releases it.
func storeOptions(cmd *cobra.Command) ([]loom.Option, func(), error) {
	addr, _ := cmd.Flags().GetString("redis")
	keyHex, _ := cmd.Flags().GetString("encryption-key")
	if keyHex == "" {
		keyHex = os.Getenv(encryptionKeyEnv)
	}

	var (
		store ports.SimulationStore = memory.NewStore()
		opts  []loom.Option
		done  = func() {}
	)
	if addr != "" {
		rs := redis.New(addr, "", 0)
		store = rs
		done = func() { _ = rs.Close() }
		opts = append(opts, loom.WithLocker(redis.NewLocker(rs.Client(), "loom:lock:")))
	}
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			done()
			return nil, nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			done()
			return nil, nil, err
		}
		store = middleware.Chain(store, mw)
	}
	return append(opts, loom.WithSimulationStore(store)), done, nil
}
