// Command kdtracer renders built-in or YAML scenes to PNG.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
