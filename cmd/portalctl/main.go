// Command portalctl signs in to the portal from a terminal and shows how the
// access gate treats the signed-in session.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
