package main

import "github.com/FluidXR/questwatch/cmd"

func main() {
	cmd.Execute()
}
