package main

import "github.com/pulsedeck/host/cmd"

func main() {
	cmd.Execute()
}
