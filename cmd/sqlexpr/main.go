// Command sqlexpr compiles and runs queries over in-memory tables, showing
// how their expressions are reduced.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
