// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Pals HTTP API server and its
// operational subcommands.
//
//	pals serve              start the HTTP server
//	pals migrate up|down    apply or roll back schema migrations
//	pals audit sweep        close audit records abandoned mid-request
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
