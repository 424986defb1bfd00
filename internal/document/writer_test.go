package document_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlog/internal/activity"
	"github.com/temirov/gitlog/internal/commitlog"
	"github.com/temirov/gitlog/internal/document"
	"github.com/temirov/gitlog/internal/repos/filesystem"
	"github.com/temirov/gitlog/internal/repos/shared"
)

type recordingRenderer struct {
	renderError    error
	renderedBlocks []document.Block
}

func (renderer *recordingRenderer) Render(blocks []document.Block, destinationPath string) error {
	renderer.renderedBlocks = blocks
	if writeError := os.WriteFile(destinationPath, []byte("partial"), 0o600); writeError != nil {
		return writeError
	}
	return renderer.renderError
}

func sampleReport() document.Report {
	return document.Report{Projects: []activity.ProjectReport{{
		Repository: shared.RepositoryHandle{Name: "alpha", Path: "/workspace/alpha"},
		Commits:    []commitlog.CommitRecord{{ShortHash: "a1b2c3d", Message: "Add renderer", Statistics: &commitlog.DiffStatistics{FilesChanged: 1, Insertions: 2}}},
	}}}
}

func directoryNames(testInstance *testing.T, directory string) []string {
	testInstance.Helper()
	entries, readError := os.ReadDir(directory)
	require.NoError(testInstance, readError)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestFormatSelection(testInstance *testing.T) {
	require.Equal(testInstance, document.FormatPDF, document.FormatFromPDFFlag(true))
	require.Equal(testInstance, document.FormatDocx, document.FormatFromPDFFlag(false))
	require.Equal(testInstance, "commit-log.docx", document.FormatDocx.FileName())
	require.Equal(testInstance, "commit-log.pdf", document.FormatPDF.FileName())
}

func TestWriterMovesRenderedDocumentIntoPlace(testInstance *testing.T) {
	outputDirectory := testInstance.TempDir()
	renderer := &recordingRenderer{}
	writer, creationError := document.NewWriter(filesystem.OSFileSystem{}, map[document.Format]document.Renderer{document.FormatDocx: renderer})
	require.NoError(testInstance, creationError)

	outputPath, writeError := writer.Write(sampleReport(), outputDirectory, document.FormatDocx)
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, filepath.Join(outputDirectory, "commit-log.docx"), outputPath)
	require.Equal(testInstance, []string{"commit-log.docx"}, directoryNames(testInstance, outputDirectory))
	require.Equal(testInstance, document.Layout(sampleReport()), renderer.renderedBlocks)
}

func TestWriterLeavesNoFileWhenRenderingFails(testInstance *testing.T) {
	outputDirectory := testInstance.TempDir()
	renderFailure := errors.New("font missing")
	writer, creationError := document.NewWriter(filesystem.OSFileSystem{}, map[document.Format]document.Renderer{
		document.FormatPDF: &recordingRenderer{renderError: renderFailure},
	})
	require.NoError(testInstance, creationError)

	_, writeError := writer.Write(sampleReport(), outputDirectory, document.FormatPDF)

	var renderError document.RenderError
	require.ErrorAs(testInstance, writeError, &renderError)
	require.Equal(testInstance, document.FormatPDF, renderError.Format)
	require.ErrorIs(testInstance, writeError, renderFailure)
	require.Empty(testInstance, directoryNames(testInstance, outputDirectory))
}

func TestWriterRejectsUnsupportedFormat(testInstance *testing.T) {
	writer, creationError := document.NewWriter(filesystem.OSFileSystem{}, map[document.Format]document.Renderer{})
	require.NoError(testInstance, creationError)

	_, writeError := writer.Write(sampleReport(), testInstance.TempDir(), document.FormatDocx)
	var renderError document.RenderError
	require.ErrorAs(testInstance, writeError, &renderError)
}

func TestWriterRendersRealDocuments(testInstance *testing.T) {
	writer, creationError := document.NewWriter(filesystem.OSFileSystem{}, nil)
	require.NoError(testInstance, creationError)

	for _, format := range []document.Format{document.FormatDocx, document.FormatPDF} {
		testInstance.Run(string(format), func(subTest *testing.T) {
			outputDirectory := subTest.TempDir()
			outputPath, writeError := writer.Write(sampleReport(), outputDirectory, format)
			require.NoError(subTest, writeError)

			fileInfo, statError := os.Stat(outputPath)
			require.NoError(subTest, statError)
			require.Greater(subTest, fileInfo.Size(), int64(0))
			require.Equal(subTest, []string{format.FileName()}, directoryNames(subTest, outputDirectory))
		})
	}
}

func TestNewWriterRequiresFileSystem(testInstance *testing.T) {
	_, creationError := document.NewWriter(nil, nil)
	require.ErrorIs(testInstance, creationError, document.ErrFileSystemNotConfigured)
}
