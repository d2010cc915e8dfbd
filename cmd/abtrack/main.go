package main

import "github.com/emiliopalmerini/abtrack/internal/cli"

func main() {
	cli.Execute()
}
