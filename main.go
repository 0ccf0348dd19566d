package main

import "recipe-harvest/pkg/cli"

func main() {
	cli.Execute()
}
