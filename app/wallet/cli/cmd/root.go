// Package cmd contains the wallet app commands.
package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	mainnet     bool
)

const (
	keyExtension = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().BoolVarP(&mainnet, "mainnet", "m", false, "Use mainnet address encoding.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}

	return filepath.Join(accountPath, accountName)
}

func network() keys.Network {
	if mainnet {
		return keys.Mainnet
	}
	return keys.Testnet
}

// loadPrivateKey reads the hex encoded secret from the account file.
func loadPrivateKey() (*keys.PrivateKey, error) {
	data, err := os.ReadFile(getPrivateKeyPath())
	if err != nil {
		return nil, err
	}

	secret, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}

	return keys.PrivateKeyFromBytes(secret)
}

// savePrivateKey writes the secret as hex to the account file.
func savePrivateKey(key *keys.PrivateKey) error {
	if err := os.MkdirAll(accountPath, 0750); err != nil {
		return err
	}

	data := hex.EncodeToString(key.Bytes())
	return os.WriteFile(getPrivateKeyPath(), []byte(data), 0600)
}
