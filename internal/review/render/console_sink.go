package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	progressLineTemplateConstant = "[%d/%d] %s\n"
	logLineTemplateConstant      = "%s %s\n"
	timestampLayoutConstant      = "15:04:05"
)

// ConsoleProgressSink prints stage transitions and log entries to a terminal
// writer, coloring by severity. It is safe for concurrent use.
type ConsoleProgressSink struct {
	writer        io.Writer
	writeMutex    sync.Mutex
	stageColor    *color.Color
	errorColor    *color.Color
	warningColor  *color.Color
	timestampTint *color.Color
}

// NewConsoleProgressSink constructs a sink writing to the supplied writer.
func NewConsoleProgressSink(writer io.Writer) *ConsoleProgressSink {
	return &ConsoleProgressSink{
		writer:        writer,
		stageColor:    color.New(color.FgCyan, color.Bold),
		errorColor:    color.New(color.FgRed),
		warningColor:  color.New(color.FgYellow),
		timestampTint: color.New(color.Faint),
	}
}

// OnProgress prints the stage transition with its position in the cycle.
func (sink *ConsoleProgressSink) OnProgress(progress review.ScanProgress) {
	sink.writeMutex.Lock()
	defer sink.writeMutex.Unlock()
	stageLabel := sink.stageColor.Sprint(progress.Message)
	if progress.Stage == review.StageError {
		stageLabel = sink.errorColor.Sprint(progress.Message)
	}
	fmt.Fprintf(sink.writer, progressLineTemplateConstant, progress.Current+1, progress.Total+1, stageLabel)
}

// OnLog prints the entry with a faint timestamp, tinted by severity.
func (sink *ConsoleProgressSink) OnLog(entry review.LogEntry) {
	sink.writeMutex.Lock()
	defer sink.writeMutex.Unlock()
	message := entry.Message
	switch entry.Severity {
	case review.LogSeverityError:
		message = sink.errorColor.Sprint(message)
	case review.LogSeverityWarning:
		message = sink.warningColor.Sprint(message)
	}
	fmt.Fprintf(sink.writer, logLineTemplateConstant, sink.timestampTint.Sprint(entry.Timestamp.Format(timestampLayoutConstant)), message)
}
