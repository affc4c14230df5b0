package main

import "github.com/crest-build/crest/cmd"

func main() {
	cmd.Execute()
}
