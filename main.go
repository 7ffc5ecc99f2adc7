package main

import "statuscheck-go/cmd"

func main() {
	cmd.Execute()
}
