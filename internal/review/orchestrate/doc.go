// Package orchestrate drives review cycles and hierarchical commit and push
// execution. Commit batches run nested repositories first so the parent
// repository records final submodule pointer positions, and every commit is
// verified against the HEAD hash captured at planning time.
package orchestrate
