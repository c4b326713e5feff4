package main

import "decantifume-api/cmd/decantifume/commands"

func main() {
	commands.Execute()
}
