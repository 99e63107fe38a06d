package main

import "reelrate/cmd"

func main() {
	cmd.Execute()
}
