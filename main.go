package main

import "github.com/mouse-blink/typecov/cmd"

func main() {
	cmd.Execute()
}
