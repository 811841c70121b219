// Package review wires the review, commit, and push commands: workspace
// scanning, commit message generation, report rendering, and hierarchical
// commit orchestration behind Cobra commands.
package review
