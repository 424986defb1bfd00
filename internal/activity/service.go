package activity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitlog/internal/branches/synchronize"
	"github.com/temirov/gitlog/internal/commitlog"
	"github.com/temirov/gitlog/internal/reportwindow"
	"github.com/temirov/gitlog/internal/repos/shared"
	"github.com/temirov/gitlog/internal/timetracking"
)

const (
	discovererMissingMessageConstant   = "repository discoverer not configured"
	aggregatorMissingMessageConstant   = "log aggregator not configured"
	synchronizerMissingMessageConstant = "branch synchronizer not configured"
	timeLookupMissingMessageConstant   = "time tracking lookup not configured"
	discoveryErrorTemplateConstant     = "repository discovery failed: %w"
	collectionAbortedTemplateConstant  = "activity collection interrupted: %w"
	logQueryFailedLogMessageConstant   = "Log query failed, repository omitted"
	timeLookupFailedLogMessageConstant = "Tracked time lookup failed"
	repositoryDoneLogMessageConstant   = "Repository processed"
	collectionDoneLogMessageConstant   = "Activity collection complete"
	logFieldRepositoryConstant         = "repository"
	logFieldCommitCountConstant        = "commits"
	logFieldWindowConstant             = "window"
	logFieldDiscoveredConstant         = "discovered"
	logFieldReportedConstant           = "reported"
	logFieldFailedConstant             = "failed"
)

// ErrDiscovererNotConfigured indicates the service was constructed without a repository discoverer.
var ErrDiscovererNotConfigured = errors.New(discovererMissingMessageConstant)

// ErrAggregatorNotConfigured indicates the service was constructed without a log aggregator.
var ErrAggregatorNotConfigured = errors.New(aggregatorMissingMessageConstant)

// ErrSynchronizerNotConfigured indicates branch synchronization was requested without a synchronizer.
var ErrSynchronizerNotConfigured = errors.New(synchronizerMissingMessageConstant)

// ErrTimeLookupNotConfigured indicates tracked time was requested without a lookup.
var ErrTimeLookupNotConfigured = errors.New(timeLookupMissingMessageConstant)

// RepositoryDiscoverer lists repositories under a root.
type RepositoryDiscoverer interface {
	DiscoverRepositories(executionContext context.Context, root string) ([]shared.RepositoryHandle, error)
}

// BranchSynchronizer aligns local branches with their remotes.
type BranchSynchronizer interface {
	Synchronize(executionContext context.Context, repository shared.RepositoryHandle) synchronize.Result
}

// LogAggregator queries commit history.
type LogAggregator interface {
	Aggregate(executionContext context.Context, repository shared.RepositoryHandle, query commitlog.Query) ([]commitlog.CommitRecord, error)
}

// Dependencies enumerates collaborators used by Service. Synchronizer and TimeLookup are only required when the matching option is enabled.
type Dependencies struct {
	Discoverer   RepositoryDiscoverer
	Aggregator   LogAggregator
	Synchronizer BranchSynchronizer
	TimeLookup   timetracking.Lookup
	Logger       *zap.Logger
}

// Options configures a collection run.
type Options struct {
	Root                string
	Window              reportwindow.Window
	Author              string
	SynchronizeBranches bool
	IncludeTrackedTime  bool
	// Concurrency caps simultaneous repository tasks. Zero or less means no cap.
	Concurrency int
}

// ProjectReport holds the commits of one repository with at least one match.
type ProjectReport struct {
	Repository  shared.RepositoryHandle
	TrackedTime string
	Commits     []commitlog.CommitRecord
}

// Summary counts repositories by what happened to them.
type Summary struct {
	Discovered int
	Reported   int
	Failed     int
}

// Result is the ordered outcome of a collection run.
type Result struct {
	Reports []ProjectReport
	Summary Summary
}

type repositoryOutcome struct {
	report *ProjectReport
	failed bool
}

// Service orchestrates discovery, synchronization, aggregation, and time lookups.
type Service struct {
	discoverer   RepositoryDiscoverer
	aggregator   LogAggregator
	synchronizer BranchSynchronizer
	timeLookup   timetracking.Lookup
	logger       *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if dependencies.Aggregator == nil {
		return nil, ErrAggregatorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		discoverer:   dependencies.Discoverer,
		aggregator:   dependencies.Aggregator,
		synchronizer: dependencies.Synchronizer,
		timeLookup:   dependencies.TimeLookup,
		logger:       logger,
	}, nil
}

// Collect runs one task per discovered repository and returns reports in discovery order.
// Repositories without matching commits or whose log query failed are omitted.
// An error is returned only for invalid options, a failed discovery, or an interrupted run.
func (service *Service) Collect(executionContext context.Context, options Options) (Result, error) {
	if options.SynchronizeBranches && service.synchronizer == nil {
		return Result{}, ErrSynchronizerNotConfigured
	}
	if options.IncludeTrackedTime && service.timeLookup == nil {
		return Result{}, ErrTimeLookupNotConfigured
	}

	repositories, discoveryError := service.discoverer.DiscoverRepositories(executionContext, options.Root)
	if discoveryError != nil {
		return Result{}, fmt.Errorf(discoveryErrorTemplateConstant, discoveryError)
	}

	outcomes := make([]repositoryOutcome, len(repositories))
	var taskGroup errgroup.Group
	if options.Concurrency > 0 {
		taskGroup.SetLimit(options.Concurrency)
	}
	for repositoryIndex := range repositories {
		taskGroup.Go(func() error {
			outcomes[repositoryIndex] = service.processRepository(executionContext, repositories[repositoryIndex], options)
			return nil
		})
	}
	_ = taskGroup.Wait()

	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, fmt.Errorf(collectionAbortedTemplateConstant, contextError)
	}

	result := Result{Summary: Summary{Discovered: len(repositories)}}
	for _, outcome := range outcomes {
		if outcome.failed {
			result.Summary.Failed++
		}
		if outcome.report != nil {
			result.Reports = append(result.Reports, *outcome.report)
		}
	}
	result.Summary.Reported = len(result.Reports)

	service.logger.Info(
		collectionDoneLogMessageConstant,
		zap.Stringer(logFieldWindowConstant, options.Window),
		zap.Int(logFieldDiscoveredConstant, result.Summary.Discovered),
		zap.Int(logFieldReportedConstant, result.Summary.Reported),
		zap.Int(logFieldFailedConstant, result.Summary.Failed),
	)
	return result, nil
}

func (service *Service) processRepository(executionContext context.Context, repository shared.RepositoryHandle, options Options) repositoryOutcome {
	repositoryField := zap.String(logFieldRepositoryConstant, repository.Name)

	if options.SynchronizeBranches {
		service.synchronizer.Synchronize(executionContext, repository)
	}

	commits, aggregateError := service.aggregator.Aggregate(executionContext, repository, commitlog.Query{Window: options.Window, Author: options.Author})
	if aggregateError != nil {
		service.logger.Warn(logQueryFailedLogMessageConstant, repositoryField, zap.Error(aggregateError))
		return repositoryOutcome{failed: true}
	}

	service.logger.Debug(repositoryDoneLogMessageConstant, repositoryField, zap.Int(logFieldCommitCountConstant, len(commits)))
	if len(commits) == 0 {
		return repositoryOutcome{}
	}

	report := ProjectReport{Repository: repository, Commits: commits}
	if options.IncludeTrackedTime {
		trackedTime, lookupError := service.timeLookup.TrackedTime(executionContext, repository.Name, options.Window)
		if lookupError != nil {
			service.logger.Warn(timeLookupFailedLogMessageConstant, repositoryField, zap.Error(lookupError))
		} else {
			report.TrackedTime = trackedTime
		}
	}
	return repositoryOutcome{report: &report}
}
