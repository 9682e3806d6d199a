package main

import "github.com/Tiliavir/freshtrack/cmd"

func main() {
	cmd.Execute()
}
