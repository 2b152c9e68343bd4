package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/bitcoin/foundation/explorer"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", explorer.TestnetURL, "Url of the explorer API.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	address := privateKey.PublicKey().Address(true, network())
	fmt.Println("For Address:", address)

	client := explorer.New(explorer.Config{URL: url})

	stats, err := client.AddressStats(context.Background(), address)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(stats.Balance(), "SAT")
}
