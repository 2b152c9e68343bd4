package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/bitcoin/business/core/transact"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/signature"
	"github.com/ardanlabs/bitcoin/foundation/explorer"
	"github.com/spf13/cobra"
)

var (
	url    string
	prevTx string
	to     string
	amount uint64
	fee    uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a signed transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", explorer.TestnetURL, "Url of the explorer API.")
	sendCmd.Flags().StringVarP(&prevTx, "prev", "x", "", "Txid of the transaction funding this wallet.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to pay.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send in satoshi.")
	sendCmd.Flags().Uint64VarP(&fee, "fee", "f", 500, "Miner fee in satoshi.")
	sendCmd.MarkFlagRequired("prev")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	address := privateKey.PublicKey().Address(true, network())

	client := explorer.New(explorer.Config{URL: url})
	ctx := context.Background()

	b := transact.NewBuilder(client)
	if err := b.AddInput(ctx, prevTx, address); err != nil {
		log.Fatal(err)
	}

	if amount+fee > b.Funding() {
		log.Fatalf("amount %d plus fee %d exceeds funding %d", amount, fee, b.Funding())
	}

	if err := b.AddOutput(to, amount); err != nil {
		log.Fatal(err)
	}

	// Anything left after the fee returns to this wallet.
	if change := b.Funding() - amount - fee; change > 0 {
		if err := b.AddOutput(address, change); err != nil {
			log.Fatal(err)
		}
	}

	if err := b.Sign(privateKey, signature.Deterministic{}); err != nil {
		log.Fatal(err)
	}

	txn, err := b.Tx()
	if err != nil {
		log.Fatal(err)
	}

	raw, err := txn.Serialize()
	if err != nil {
		log.Fatal(err)
	}

	txid, err := client.Broadcast(ctx, raw)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Broadcast:", txid)
}
