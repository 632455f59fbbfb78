package main

import "github.com/crimson-sun/taxon/internal/cli"

func main() {
	cli.Execute()
}
