package main

import "github.com/fakeyudi/aist/cmd"

func main() {
	cmd.Execute()
}
