package main

import "github.com/ardanlabs/protochain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
