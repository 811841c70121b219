// Package review defines the data model shared by the multi-repository change
// review pipeline: repositories, file changes, scan statistics, review
// reports, progress events, and the error taxonomy used across scanning,
// generation, and commit orchestration.
package review
