package main

import "github.com/oselabs/agentsight/internal/cli"

func main() {
	cli.Execute()
}
