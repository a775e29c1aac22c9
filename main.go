package main

import "github.com/twiced-technology-gmbh/tasklane/cmd"

func main() {
	cmd.Execute()
}
