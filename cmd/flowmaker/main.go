// Flowmaker compiles indentation-structured pseudocode into Mermaid
// flowchart text.
//
// Usage:
//
//	# Compile a file and print the graph
//	flowmaker render algorithm.pseudo
//
//	# Check sources for errors
//	flowmaker lint ./algorithms
//
//	# Recompile sources as they change
//	flowmaker watch ./algorithms
//
//	# Serve the HTTP API with stored diagrams
//	flowmaker serve --config config.yaml
//
//	# Manage stored diagrams
//	flowmaker diagram list --activity lesson-1
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
