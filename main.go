package main

import "github.com/tidlog/tidlog/cmd"

func main() {
	cmd.Execute()
}
