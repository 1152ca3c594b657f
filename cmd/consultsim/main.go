// consultsim drives the consultation engine from the command line.
//
// Usage:
//
//	consultsim play --actions begin,current_meds,recommend_drug,acetaminophen [--anticoagulant=false] [--procedure=false]
//	consultsim matrix [--drug nsaid] [-o yaml]
//	consultsim catalog
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
