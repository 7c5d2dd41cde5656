// Command lexctl is the operator CLI: inspect routing and rule matches
// offline, or run searches and answers against a live deployment.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
