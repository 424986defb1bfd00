package document

import (
	"fmt"

	"github.com/temirov/gitlog/internal/activity"
	"github.com/temirov/gitlog/internal/commitlog"
)

// DefaultTitleConstant is the document title used when none is configured.
const DefaultTitleConstant = "Commit Log"

const (
	commitLineTemplateConstant     = "%s %s"
	diffLineTemplateConstant       = "%d %s, %d insertions(+), %d deletions(-)"
	trackedTimeTemplateConstant    = "Time in editor: %s"
	singularFileNounConstant       = "file"
	pluralFileNounConstant         = "files"
	singleFileChangedCountConstant = 1
)

// BlockKind identifies how a block is drawn.
type BlockKind int

// Supported block kinds.
const (
	BlockTitle BlockKind = iota
	BlockRepositoryHeading
	BlockTrackedTime
	BlockCommit
	BlockDiffStatistics
)

// Block is one line of document content.
type Block struct {
	Kind BlockKind
	Text string
}

// Report is the input to rendering.
type Report struct {
	Title    string
	Projects []activity.ProjectReport
}

// Layout converts a report into blocks in reading order.
func Layout(report Report) []Block {
	title := report.Title
	if len(title) == 0 {
		title = DefaultTitleConstant
	}

	blocks := []Block{{Kind: BlockTitle, Text: title}}
	for _, project := range report.Projects {
		blocks = append(blocks, Block{Kind: BlockRepositoryHeading, Text: project.Repository.Name})
		if len(project.TrackedTime) > 0 {
			blocks = append(blocks, Block{Kind: BlockTrackedTime, Text: TrackedTimeLine(project.TrackedTime)})
		}
		for _, commit := range project.Commits {
			blocks = append(blocks, Block{Kind: BlockCommit, Text: CommitLine(commit)})
			if commit.Statistics != nil {
				blocks = append(blocks, Block{Kind: BlockDiffStatistics, Text: DiffLine(*commit.Statistics)})
			}
		}
	}
	return blocks
}

// CommitLine renders the short hash followed by the commit subject.
func CommitLine(commit commitlog.CommitRecord) string {
	return fmt.Sprintf(commitLineTemplateConstant, commit.ShortHash, commit.Message)
}

// DiffLine renders diff statistics, using the singular noun for a single file.
func DiffLine(statistics commitlog.DiffStatistics) string {
	fileNoun := pluralFileNounConstant
	if statistics.FilesChanged == singleFileChangedCountConstant {
		fileNoun = singularFileNounConstant
	}
	return fmt.Sprintf(diffLineTemplateConstant, statistics.FilesChanged, fileNoun, statistics.Insertions, statistics.Deletions)
}

// TrackedTimeLine renders the editor time line.
func TrackedTimeLine(trackedTime string) string {
	return fmt.Sprintf(trackedTimeTemplateConstant, trackedTime)
}
