package main

import "github.com/macro2718/starcat/cmd"

func main() {
	cmd.Execute()
}
