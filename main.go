package main

import "github.com/iksnae/claude-log-viewer/cmd"

func main() {
	cmd.Execute()
}
