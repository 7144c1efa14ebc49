// Command sqlgenctl is the process entry point for the Text-to-SQL
// generation service: it loads configuration, wires every pkg/* service
// together, and exposes subcommands to run the HTTP server, apply store
// migrations, introspect a configured database, and scaffold a config
// file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
