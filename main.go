package main

import "LiveCanvas/cmd"

func main() {
	cmd.Execute()
}
