package main

import "github.com/nijta-api/harbor-cli/cmd"

func main() {
	cmd.Execute()
}
