package main

import "github.com/djcass44/debscan/cmd"

var version = "development"

func main() {
	cmd.Execute(version)
}
