package main

import "shiftcal/internal/cmd"

func main() {
	cmd.Execute()
}
