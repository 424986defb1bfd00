package document

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/temirov/gitlog/internal/repos/shared"
)

const (
	outputBaseNameConstant             = "commit-log"
	temporaryPatternTemplateConstant   = ".%s-*.%s"
	outputDirectoryPermissionsConstant = 0o755
	fileSystemMissingMessageConstant   = "document writer file system not configured"
	unsupportedFormatTemplateConstant  = "unsupported document format %q"
	renderErrorTemplateConstant        = "unable to render %s document: %v"
)

// Format selects the output document type.
type Format string

// Supported formats.
const (
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
)

// FormatFromPDFFlag maps the pdf toggle onto a Format.
func FormatFromPDFFlag(pdfRequested bool) Format {
	if pdfRequested {
		return FormatPDF
	}
	return FormatDocx
}

// FileName returns the output file name for the format.
func (format Format) FileName() string {
	return outputBaseNameConstant + "." + string(format)
}

// ErrFileSystemNotConfigured indicates the writer was constructed without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// RenderError reports a failure to produce the output document. No output file is left behind.
type RenderError struct {
	Format Format
	Cause  error
}

// Error describes the render failure.
func (renderError RenderError) Error() string {
	return fmt.Sprintf(renderErrorTemplateConstant, renderError.Format, renderError.Cause)
}

// Unwrap exposes the underlying failure.
func (renderError RenderError) Unwrap() error {
	return renderError.Cause
}

// Renderer draws blocks into a file at destinationPath.
type Renderer interface {
	Render(blocks []Block, destinationPath string) error
}

// Writer renders reports and moves the result into place atomically.
type Writer struct {
	fileSystem shared.FileSystem
	renderers  map[Format]Renderer
}

// NewWriter constructs a Writer. A nil renderer map selects the docx and pdf renderers.
func NewWriter(fileSystem shared.FileSystem, renderers map[Format]Renderer) (*Writer, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if renderers == nil {
		renderers = map[Format]Renderer{
			FormatDocx: DocxRenderer{},
			FormatPDF:  PDFRenderer{},
		}
	}
	return &Writer{fileSystem: fileSystem, renderers: renderers}, nil
}

// Write renders the report into directory and returns the final document path.
func (writer *Writer) Write(report Report, directory string, format Format) (string, error) {
	renderer, supported := writer.renderers[format]
	if !supported {
		return "", RenderError{Format: format, Cause: fmt.Errorf(unsupportedFormatTemplateConstant, format)}
	}

	if directoryError := writer.fileSystem.MkdirAll(directory, outputDirectoryPermissionsConstant); directoryError != nil {
		return "", RenderError{Format: format, Cause: directoryError}
	}

	temporaryPath, temporaryError := writer.fileSystem.CreateTemp(directory, fmt.Sprintf(temporaryPatternTemplateConstant, outputBaseNameConstant, format))
	if temporaryError != nil {
		return "", RenderError{Format: format, Cause: temporaryError}
	}

	if renderError := renderer.Render(Layout(report), temporaryPath); renderError != nil {
		_ = writer.fileSystem.Remove(temporaryPath)
		return "", RenderError{Format: format, Cause: renderError}
	}

	destinationPath := filepath.Join(directory, format.FileName())
	if renameError := writer.fileSystem.Rename(temporaryPath, destinationPath); renameError != nil {
		_ = writer.fileSystem.Remove(temporaryPath)
		return "", RenderError{Format: format, Cause: renameError}
	}
	return destinationPath, nil
}
