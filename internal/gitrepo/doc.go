// Package gitrepo implements repository-level git operations used by the
// change review and commit orchestration services. All git access shells out
// through execshell so the package stays testable with fake executors.
package gitrepo
