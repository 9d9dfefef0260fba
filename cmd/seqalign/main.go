// Command seqalign aligns sequencing reads and profiles the alignments.
//
// Usage:
//
//	seqalign [command] [flags]
//
// Commands:
//
//	align       Align two sequences
//	profile     Profile reads against their best reference
//	batch       Profile many reads in parallel with summary statistics
//	cache       Inspect and merge alignment cache directories
//	version     Show version information
package main

import "os"

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
