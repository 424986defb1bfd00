package commitlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	recordSeparatorConstant          = "\x1e"
	fieldSeparatorConstant           = "\x1f"
	lineSeparatorConstant            = "\n"
	shortHashLengthConstant          = 7
	malformedRecordTemplateConstant  = "malformed log record %q"
	malformedCounterTemplateConstant = "malformed diff statistics %q: %w"
)

var shortStatPattern = regexp.MustCompile(`^(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?$`)

// DiffStatistics counts the changes a commit introduces relative to its parent.
type DiffStatistics struct {
	FilesChanged uint
	Insertions   uint
	Deletions    uint
}

// CommitRecord is a normalized log entry. Statistics is nil when git reported none, as for merge commits.
type CommitRecord struct {
	ShortHash  string
	Message    string
	Statistics *DiffStatistics
}

// ParseLog converts delimited git log output with --shortstat into commit records, preserving order.
func ParseLog(output string) ([]CommitRecord, error) {
	records := []CommitRecord{}
	for _, rawRecord := range strings.Split(output, recordSeparatorConstant) {
		if len(strings.TrimSpace(rawRecord)) == 0 {
			continue
		}

		lines := strings.Split(rawRecord, lineSeparatorConstant)
		header := strings.SplitN(lines[0], fieldSeparatorConstant, 2)
		if len(header) != 2 || len(header[0]) < shortHashLengthConstant {
			return nil, fmt.Errorf(malformedRecordTemplateConstant, lines[0])
		}

		record := CommitRecord{
			ShortHash: header[0][:shortHashLengthConstant],
			Message:   strings.TrimSpace(header[1]),
		}
		for _, line := range lines[1:] {
			trimmedLine := strings.TrimSpace(line)
			if len(trimmedLine) == 0 {
				continue
			}
			statistics, parseError := parseShortStat(trimmedLine)
			if parseError != nil {
				return nil, parseError
			}
			record.Statistics = statistics
		}
		records = append(records, record)
	}
	return records, nil
}

func parseShortStat(line string) (*DiffStatistics, error) {
	matches := shortStatPattern.FindStringSubmatch(line)
	if matches == nil {
		return nil, fmt.Errorf(malformedRecordTemplateConstant, line)
	}

	counters := make([]uint, 0, 3)
	for _, match := range matches[1:] {
		if len(match) == 0 {
			counters = append(counters, 0)
			continue
		}
		value, conversionError := strconv.ParseUint(match, 10, 0)
		if conversionError != nil {
			return nil, fmt.Errorf(malformedCounterTemplateConstant, line, conversionError)
		}
		counters = append(counters, uint(value))
	}
	return &DiffStatistics{FilesChanged: counters[0], Insertions: counters[1], Deletions: counters[2]}, nil
}
