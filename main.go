package main

import "ddsconv/cmd"

func main() {
	cmd.Execute()
}
