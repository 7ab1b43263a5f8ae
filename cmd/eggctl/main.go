package main

import "github.com/mamadbah2/eggtracker/internal/cli"

func main() {
	cli.Execute()
}
