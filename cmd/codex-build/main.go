// Command codex-build prepares the native libcodex artifact that the
// bindings link against. Run it before go build; cgo needs the
// artifact at link time.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
