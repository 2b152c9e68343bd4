package cmd

import (
	"crypto/rand"
	"fmt"
	"log"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	privateKey, err := keys.GeneratePrivateKey(rand.Reader)
	if err != nil {
		log.Fatal(err)
	}

	if err := savePrivateKey(privateKey); err != nil {
		log.Fatal(err)
	}

	fmt.Println(privateKey.PublicKey().Address(true, network()))
}
