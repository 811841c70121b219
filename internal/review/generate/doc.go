// Package generate produces commit messages and the cross-repository
// executive summary. Remote generation attempts run under explicit deadlines
// and fall back to deterministic local composition, so callers always receive
// usable text.
package generate
