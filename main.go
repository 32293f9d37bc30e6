package main

import "github.com/agentic-research/tree2tabular/cmd"

func main() {
	cmd.Execute()
}
