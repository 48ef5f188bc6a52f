package main

import "github.com/intentional-app/intentional/internal/cli"

func main() {
	cli.Execute()
}
