package main

import "github.com/RyanBlaney/formant-extract/cmd"

func main() {
	cmd.Execute()
}
