// Package main is the entry point for the footballeda CLI tool, which explores
// season-level football team statistics from a CSV file.
package main

import "github.com/pable/go-football-eda/cmd"

func main() {
	cmd.Execute()
}
