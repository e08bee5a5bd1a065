package main

import "github.com/storegate/storegate/cmd/storegate/cmd"

func main() {
	cmd.Execute()
}
