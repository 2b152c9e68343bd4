package main

import "github.com/ardanlabs/bitcoin/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
