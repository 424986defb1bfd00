package timetracking

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

// IOPrompter reads prompt responses line by line from an io.Reader.
type IOPrompter struct {
	mutex  sync.Mutex
	reader *bufio.Reader
	writer io.Writer
}

// NewIOPrompter constructs a prompter from the provided reader and writer.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	return &IOPrompter{reader: bufio.NewReader(input), writer: output}
}

// Prompt writes the message and returns the trimmed response line.
func (prompter *IOPrompter) Prompt(message string) (string, error) {
	prompter.mutex.Lock()
	defer prompter.mutex.Unlock()

	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, message); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return strings.TrimSpace(response), nil
}
