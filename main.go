package main

import "github.com/podium-events/podium/cmd"

func main() {
	cmd.Execute()
}
