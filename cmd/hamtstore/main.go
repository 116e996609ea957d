package main

import "github.com/trielab/go-hamt4/internal/cli"

func main() {
	cli.Execute()
}
