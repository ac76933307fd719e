package main

import "github.com/doc-gate/docgate/cmd/docgate/cmd"

func main() {
	cmd.Execute()
}
