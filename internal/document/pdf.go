package document

import (
	"github.com/go-pdf/fpdf"
)

const (
	pdfOrientationConstant        = "P"
	pdfUnitConstant               = "mm"
	pdfPageSizeConstant           = "A4"
	pdfFontFamilyConstant         = "Helvetica"
	pdfBoldStyleConstant          = "B"
	pdfItalicStyleConstant        = "I"
	pdfRegularStyleConstant       = ""
	pdfTitleFontSizeConstant      = 20
	pdfHeadingFontSizeConstant    = 14
	pdfBodyFontSizeConstant       = 10
	pdfTitleLineHeightConstant    = 12
	pdfHeadingLineHeightConstant  = 8
	pdfBodyLineHeightConstant     = 5
	pdfSectionSpacingConstant     = 4
	pdfFullWidthConstant          = 0
	pdfCenterAlignmentConstant    = "C"
	pdfLeftAlignmentConstant      = "L"
	pdfNoBorderConstant           = ""
	pdfDetailIndentConstant       = 4
	pdfCodePageDescriptorConstant = ""
)

// PDFRenderer writes blocks as a PDF document using the core Helvetica font.
type PDFRenderer struct{}

// Render writes the blocks to destinationPath.
func (PDFRenderer) Render(blocks []Block, destinationPath string) error {
	pdfDocument := fpdf.New(pdfOrientationConstant, pdfUnitConstant, pdfPageSizeConstant, "")
	translate := pdfDocument.UnicodeTranslatorFromDescriptor(pdfCodePageDescriptorConstant)
	pdfDocument.AddPage()

	for _, block := range blocks {
		text := translate(block.Text)
		switch block.Kind {
		case BlockTitle:
			pdfDocument.SetFont(pdfFontFamilyConstant, pdfBoldStyleConstant, pdfTitleFontSizeConstant)
			pdfDocument.MultiCell(pdfFullWidthConstant, pdfTitleLineHeightConstant, text, pdfNoBorderConstant, pdfCenterAlignmentConstant, false)
		case BlockRepositoryHeading:
			pdfDocument.Ln(pdfSectionSpacingConstant)
			pdfDocument.SetFont(pdfFontFamilyConstant, pdfBoldStyleConstant, pdfHeadingFontSizeConstant)
			pdfDocument.MultiCell(pdfFullWidthConstant, pdfHeadingLineHeightConstant, text, pdfNoBorderConstant, pdfLeftAlignmentConstant, false)
		case BlockTrackedTime:
			pdfDocument.SetFont(pdfFontFamilyConstant, pdfItalicStyleConstant, pdfBodyFontSizeConstant)
			pdfDocument.MultiCell(pdfFullWidthConstant, pdfBodyLineHeightConstant, text, pdfNoBorderConstant, pdfLeftAlignmentConstant, false)
		case BlockDiffStatistics:
			pdfDocument.SetFont(pdfFontFamilyConstant, pdfRegularStyleConstant, pdfBodyFontSizeConstant)
			pdfDocument.SetX(pdfDocument.GetX() + pdfDetailIndentConstant)
			pdfDocument.MultiCell(pdfFullWidthConstant, pdfBodyLineHeightConstant, text, pdfNoBorderConstant, pdfLeftAlignmentConstant, false)
		default:
			pdfDocument.SetFont(pdfFontFamilyConstant, pdfRegularStyleConstant, pdfBodyFontSizeConstant)
			pdfDocument.MultiCell(pdfFullWidthConstant, pdfBodyLineHeightConstant, text, pdfNoBorderConstant, pdfLeftAlignmentConstant, false)
		}
	}

	return pdfDocument.OutputFileAndClose(destinationPath)
}
