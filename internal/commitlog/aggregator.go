package commitlog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitlog/internal/execshell"
	"github.com/temirov/gitlog/internal/reportwindow"
	"github.com/temirov/gitlog/internal/repos/shared"
)

const (
	gitLogSubcommandConstant         = "log"
	gitLogAllFlagConstant            = "--all"
	gitLogAfterFlagTemplateConstant  = "--after=%s"
	gitLogUntilFlagTemplateConstant  = "--until=%s"
	gitLogAuthorFlagTemplateConstant = "--author=%s"
	gitLogShortStatFlagConstant      = "--shortstat"
	gitLogFormatFlagConstant         = "--format=" + recordSeparatorFormatConstant + "%H" + fieldSeparatorFormatConstant + "%s"
	recordSeparatorFormatConstant    = "%x1e"
	fieldSeparatorFormatConstant     = "%x1f"
	executorMissingMessageConstant   = "git executor not configured"
	queryErrorTemplateConstant       = "log query for repository %s failed: %v"
)

// ErrGitExecutorNotConfigured indicates the aggregator was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// Query selects commits for aggregation. An empty Author matches every author.
type Query struct {
	Window reportwindow.Window
	Author string
}

// QueryError reports a failed log query against a reachable repository.
type QueryError struct {
	Repository string
	Cause      error
}

// Error describes the failed query.
func (queryError QueryError) Error() string {
	return fmt.Sprintf(queryErrorTemplateConstant, queryError.Repository, queryError.Cause)
}

// Unwrap exposes the execution failure.
func (queryError QueryError) Unwrap() error {
	return queryError.Cause
}

// Aggregator runs commit log queries through git.
type Aggregator struct {
	executor shared.GitExecutor
}

// NewAggregator constructs an Aggregator around the provided executor.
func NewAggregator(executor shared.GitExecutor) (*Aggregator, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Aggregator{executor: executor}, nil
}

// Aggregate returns the commits matching the query in the order git reports them, newest first.
// A repository without matching commits yields an empty slice and no error.
func (aggregator *Aggregator) Aggregate(executionContext context.Context, repository shared.RepositoryHandle, query Query) ([]CommitRecord, error) {
	executionResult, executionError := aggregator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        BuildArguments(query),
		WorkingDirectory: repository.Path,
	})
	if executionError != nil {
		return nil, QueryError{Repository: repository.Name, Cause: executionError}
	}

	records, parseError := ParseLog(executionResult.StandardOutput)
	if parseError != nil {
		return nil, QueryError{Repository: repository.Name, Cause: parseError}
	}
	return records, nil
}

// BuildArguments renders the git log arguments for a query. The author filter is omitted entirely when empty.
func BuildArguments(query Query) []string {
	arguments := []string{
		gitLogSubcommandConstant,
		gitLogAllFlagConstant,
		fmt.Sprintf(gitLogAfterFlagTemplateConstant, query.Window.AfterDate()),
		fmt.Sprintf(gitLogUntilFlagTemplateConstant, query.Window.UntilDate()),
	}
	trimmedAuthor := strings.TrimSpace(query.Author)
	if len(trimmedAuthor) > 0 {
		arguments = append(arguments, fmt.Sprintf(gitLogAuthorFlagTemplateConstant, trimmedAuthor))
	}
	return append(arguments, gitLogShortStatFlagConstant, gitLogFormatFlagConstant)
}
