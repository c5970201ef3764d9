package main

import "overwatch/internal/cli"

func main() {
	cli.Execute()
}
