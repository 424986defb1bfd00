package document

import (
	"github.com/gomutex/godocx"
)

const (
	titleHeadingLevelConstant      = 0
	repositoryHeadingLevelConstant = 1
)

// DocxRenderer writes blocks as a Word document.
type DocxRenderer struct{}

// Render writes the blocks to destinationPath.
func (DocxRenderer) Render(blocks []Block, destinationPath string) error {
	wordDocument, creationError := godocx.NewDocument()
	if creationError != nil {
		return creationError
	}

	for _, block := range blocks {
		switch block.Kind {
		case BlockTitle:
			if _, headingError := wordDocument.AddHeading(block.Text, titleHeadingLevelConstant); headingError != nil {
				return headingError
			}
		case BlockRepositoryHeading:
			if _, headingError := wordDocument.AddHeading(block.Text, repositoryHeadingLevelConstant); headingError != nil {
				return headingError
			}
		default:
			wordDocument.AddParagraph(block.Text)
		}
	}

	return wordDocument.SaveTo(destinationPath)
}
