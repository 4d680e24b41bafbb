// Command gokilo is a minimal raw-mode terminal text viewer.
//
// Usage:
//
//	gokilo [file]
//	gokilo snapshot [file] --rows 24 --cols 80
package main

import "github.com/scottpeterman/gokilo/internal/cli"

func main() {
	cli.Execute()
}
