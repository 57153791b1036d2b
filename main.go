package main

import "github.com/fbautopost/backend/cmd"

func main() {
	cmd.Execute()
}
