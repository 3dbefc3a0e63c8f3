package main

import "hustleledger/internal/cli"

func main() {
	cli.Execute()
}
