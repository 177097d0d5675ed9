package main

import "github.com/fulmenhq/fcman/cmd"

func main() {
	cmd.Execute()
}
