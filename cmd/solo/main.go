// Command solo runs a single-active relay: every replica competes for one
// lease, and only the leader consumes the configured JetStream consumers and
// republishes their messages.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
