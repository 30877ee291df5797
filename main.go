package main

import "github.com/shelfwise/shelfwise/cmd"

func main() {
	cmd.Execute()
}
