// seqcover - sequence coverage matching for peptide-spectrum matches
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jkoedam/seqcover/cmd/seqcover/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
