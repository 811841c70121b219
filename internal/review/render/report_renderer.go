package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	repositoryColumnHeaderConstant = "Repository"
	branchColumnHeaderConstant     = "Branch"
	syncColumnHeaderConstant       = "Sync"
	changesColumnHeaderConstant    = "Changes"
	messageColumnHeaderConstant    = "Commit Message"
	cleanRepositoryMarkerConstant  = "clean"
	syncCurrentMarkerConstant      = "current"
	scanFailurePrefixConstant      = "unreadable: "
	hiddenChangeRowTemplateConstant = "  ↳ submodule %s"
	totalsRowLabelConstant          = "TOTAL"
	summaryHeadingConstant          = "Executive Summary"
	changeFigureTemplateConstant    = "%s (+%s ~%s -%s)"
	aheadFigureTemplateConstant     = "ahead %d"
	behindFigureTemplateConstant    = "behind %d"
	messageColumnWidthConstant      = 60
)

// ReportRenderer turns a change review report into terminal-ready text.
type ReportRenderer struct{}

// NewReportRenderer constructs the renderer.
func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{}
}

// RenderReport renders the per-repository table, aggregate totals, and the
// executive summary as one printable block.
func (renderer *ReportRenderer) RenderReport(report review.ChangeReviewReport) string {
	tableWriter := table.NewWriter()
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.AppendHeader(table.Row{
		repositoryColumnHeaderConstant,
		branchColumnHeaderConstant,
		syncColumnHeaderConstant,
		changesColumnHeaderConstant,
		messageColumnHeaderConstant,
	})
	tableWriter.SetColumnConfigs([]table.ColumnConfig{
		{Name: messageColumnHeaderConstant, WidthMax: messageColumnWidthConstant},
		{Name: changesColumnHeaderConstant, Align: text.AlignRight},
	})

	for _, changeData := range report.Repositories {
		tableWriter.AppendRow(renderer.buildRepositoryRow(changeData))
		for _, hiddenChange := range changeData.HiddenSubmoduleChanges {
			tableWriter.AppendRow(table.Row{
				fmt.Sprintf(hiddenChangeRowTemplateConstant, hiddenChange.FilePath),
				"", "", "", "",
			})
		}
	}

	tableWriter.AppendFooter(table.Row{
		totalsRowLabelConstant,
		"",
		"",
		renderer.describeStatistics(report.AggregateStatistics),
		"",
	})

	outputBuilder := strings.Builder{}
	outputBuilder.WriteString(tableWriter.Render())
	if len(strings.TrimSpace(report.ExecutiveSummary)) > 0 {
		outputBuilder.WriteString("\n\n")
		outputBuilder.WriteString(summaryHeadingConstant)
		outputBuilder.WriteString("\n")
		outputBuilder.WriteString(report.ExecutiveSummary)
	}
	return outputBuilder.String()
}

func (renderer *ReportRenderer) buildRepositoryRow(changeData review.RepositoryChangeData) table.Row {
	changeFigure := cleanRepositoryMarkerConstant
	if len(changeData.ScanFailureMessage) > 0 {
		changeFigure = scanFailurePrefixConstant + changeData.ScanFailureMessage
	} else if changeData.HasChanges() || changeData.HasHiddenSubmoduleChanges() {
		changeFigure = renderer.describeStatistics(changeData.Statistics)
	}

	messageSubject := firstLine(changeData.GeneratedCommitMessage)

	return table.Row{
		changeData.Repository.Name,
		changeData.Repository.BranchName,
		describeSyncState(changeData.Repository),
		changeFigure,
		messageSubject,
	}
}

func (renderer *ReportRenderer) describeStatistics(statistics review.ScanStatistics) string {
	return fmt.Sprintf(changeFigureTemplateConstant,
		humanize.Comma(int64(statistics.TotalFiles)),
		humanize.Comma(int64(statistics.Additions)),
		humanize.Comma(int64(statistics.Modifications)),
		humanize.Comma(int64(statistics.Deletions)),
	)
}

func describeSyncState(repository review.Repository) string {
	syncFragments := []string{}
	if repository.AheadCount > 0 {
		syncFragments = append(syncFragments, fmt.Sprintf(aheadFigureTemplateConstant, repository.AheadCount))
	}
	if repository.BehindCount > 0 {
		syncFragments = append(syncFragments, fmt.Sprintf(behindFigureTemplateConstant, repository.BehindCount))
	}
	if len(syncFragments) == 0 {
		return syncCurrentMarkerConstant
	}
	return strings.Join(syncFragments, ", ")
}

func firstLine(messageText string) string {
	if newlineIndex := strings.IndexByte(messageText, '\n'); newlineIndex >= 0 {
		return messageText[:newlineIndex]
	}
	return messageText
}
