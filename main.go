package main

import "github.com/careertodo/platform/cmd"

func main() {
	cmd.Execute()
}
