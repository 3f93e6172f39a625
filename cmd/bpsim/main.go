package main

import "github.com/synheart/synheart-bpsim/internal/cli"

func main() {
	cli.Execute()
}
