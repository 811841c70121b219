package render

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const reportEncodingErrorTemplateConstant = "failed to encode review report: %w"

// reportDocument is the stable machine-readable shape of a review report.
type reportDocument struct {
	GeneratedAt      string               `yaml:"generated_at"`
	ExecutiveSummary string               `yaml:"executive_summary,omitempty"`
	Totals           statisticsDocument   `yaml:"totals"`
	Repositories     []repositoryDocument `yaml:"repositories"`
}

type statisticsDocument struct {
	TotalFiles             int `yaml:"total_files"`
	Additions              int `yaml:"additions"`
	Modifications          int `yaml:"modifications"`
	Deletions              int `yaml:"deletions"`
	HiddenSubmoduleChanges int `yaml:"hidden_submodule_changes"`
}

type repositoryDocument struct {
	Name                   string             `yaml:"name"`
	Path                   string             `yaml:"path"`
	Branch                 string             `yaml:"branch"`
	AheadCount             int                `yaml:"ahead,omitempty"`
	BehindCount            int                `yaml:"behind,omitempty"`
	ScanFailure            string             `yaml:"scan_failure,omitempty"`
	CommitMessage          string             `yaml:"commit_message,omitempty"`
	Statistics             statisticsDocument `yaml:"statistics"`
	Changes                []changeDocument   `yaml:"changes,omitempty"`
	HiddenSubmoduleChanges []changeDocument   `yaml:"hidden_submodule_changes,omitempty"`
}

type changeDocument struct {
	Path         string `yaml:"path"`
	PreviousPath string `yaml:"previous_path,omitempty"`
	Status       string `yaml:"status"`
	Staged       bool   `yaml:"staged"`
}

// RenderYAML encodes the report as YAML for machine consumption.
func (renderer *ReportRenderer) RenderYAML(report review.ChangeReviewReport) (string, error) {
	document := reportDocument{
		GeneratedAt:      report.GeneratedAt.Format(time.RFC3339),
		ExecutiveSummary: report.ExecutiveSummary,
		Totals:           buildStatisticsDocument(report.AggregateStatistics),
		Repositories:     make([]repositoryDocument, 0, len(report.Repositories)),
	}

	for _, changeData := range report.Repositories {
		document.Repositories = append(document.Repositories, repositoryDocument{
			Name:                   changeData.Repository.Name,
			Path:                   changeData.Repository.Path,
			Branch:                 changeData.Repository.BranchName,
			AheadCount:             changeData.Repository.AheadCount,
			BehindCount:            changeData.Repository.BehindCount,
			ScanFailure:            changeData.ScanFailureMessage,
			CommitMessage:          changeData.GeneratedCommitMessage,
			Statistics:             buildStatisticsDocument(changeData.Statistics),
			Changes:                buildChangeDocuments(changeData.Changes),
			HiddenSubmoduleChanges: buildChangeDocuments(changeData.HiddenSubmoduleChanges),
		})
	}

	encodedDocument, encodingError := yaml.Marshal(document)
	if encodingError != nil {
		return "", fmt.Errorf(reportEncodingErrorTemplateConstant, encodingError)
	}
	return string(encodedDocument), nil
}

func buildStatisticsDocument(statistics review.ScanStatistics) statisticsDocument {
	return statisticsDocument{
		TotalFiles:             statistics.TotalFiles,
		Additions:              statistics.Additions,
		Modifications:          statistics.Modifications,
		Deletions:              statistics.Deletions,
		HiddenSubmoduleChanges: statistics.HiddenSubmoduleChanges,
	}
}

func buildChangeDocuments(changes []review.FileChange) []changeDocument {
	if len(changes) == 0 {
		return nil
	}
	documents := make([]changeDocument, 0, len(changes))
	for _, fileChange := range changes {
		documents = append(documents, changeDocument{
			Path:         fileChange.FilePath,
			PreviousPath: fileChange.PreviousPath,
			Status:       string(fileChange.Status),
			Staged:       fileChange.Staged,
		})
	}
	return documents
}
