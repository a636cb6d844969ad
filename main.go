package main

import "github.com/hydrosuite/qualw2/cmd"

func main() {
	cmd.Execute()
}
