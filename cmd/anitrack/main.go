// Command anitrack runs the batch jobs of the API from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(openServices).Execute(); err != nil {
		os.Exit(1)
	}
}
