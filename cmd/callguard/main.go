// Package main provides the callguard CLI.
//
// Usage:
//
//	callguard [flags] <command> [args]
//
// Commands:
//
//	analyze  - Run the full voice-call risk pipeline on a recording
//	text     - Score a piece of text for scam and bot signals
//	spoof    - Run only the anti-spoofing model on a recording
//	token    - Issue an API service token
//
// Configuration is read from the environment (and .env), the same as the
// API server.
package main

import (
	"fmt"
	"os"

	"github.com/johnquangdev/voice-guard/cmd/callguard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
