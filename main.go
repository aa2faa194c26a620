// Package main is the entry point for the scrimtally CLI tool, which merges
// screenshot-extracted tournament results into ranked standings tables.
package main

import "scrimtally/cmd"

func main() {
	cmd.Execute()
}
