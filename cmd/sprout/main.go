package main

import "github.com/hobbysprout/sprout/internal/cli"

func main() {
	cli.Execute()
}
