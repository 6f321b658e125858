package main

import "github.com/brogergvhs/xkcd/cmd"

func main() {
	cmd.Execute()
}
