package main

import "paws/internal/cli"

func main() {
	cli.Execute()
}
