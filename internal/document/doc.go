// Package document renders collected project reports into a docx or pdf file.
//
// Layout turns reports into renderer-neutral blocks; DocxRenderer and
// PDFRenderer draw those blocks; Writer renders into a temporary file and
// renames it into place so a failed render never leaves a partial document.
package document
