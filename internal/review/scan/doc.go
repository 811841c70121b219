// Package scan discovers git repositories across a workspace and normalizes
// their uncommitted state into the review data model, separating authored
// file changes from submodule pointer bumps in the designated parent
// repository.
package scan
