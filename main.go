// Package main is the entry point of vertextester, a command-line tool that
// generates unit tests for selected source files with Gemini.
package main

import "vertextester/cmd"

func main() {
	cmd.Execute()
}
