package main

import "github.com/rybkr/orepack/cmd"

func main() {
	cmd.Execute()
}
