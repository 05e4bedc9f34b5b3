package main

import "armory-sync/cmd"

func main() {
	cmd.Execute()
}
