package main

import "example.com/cartonbox/cmd"

func main() {
	cmd.Execute()
}
