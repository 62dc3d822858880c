package main

import "planrecon/cmd/planrecon/cmd"

func main() {
	cmd.Execute()
}
