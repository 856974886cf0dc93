package main

import "portacraft/internal/cli"

func main() {
	cli.Execute()
}
