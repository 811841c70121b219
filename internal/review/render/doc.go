// Package render formats review reports and progress events for the terminal.
package render
