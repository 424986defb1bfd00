package synchronize

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitlog/internal/gitrepo"
	"github.com/temirov/gitlog/internal/repos/shared"
)

const (
	repositoryManagerMissingMessageConstant   = "repository manager not configured"
	fetchFailedLogMessageConstant             = "Fetch failed, skipping branch synchronization"
	listingFailedLogMessageConstant           = "Unable to enumerate remote branches, skipping branch synchronization"
	branchFailedLogMessageConstant            = "Branch synchronization failed"
	branchSkippedLogMessageConstant           = "Remote branch no longer exists, skipping"
	branchSyncedLogMessageConstant            = "Branch synchronized"
	synchronizationCompleteLogMessageConstant = "Repository synchronization complete"
	logFieldRepositoryConstant                = "repository"
	logFieldBranchConstant                    = "branch"
	logFieldOutcomeConstant                   = "outcome"
	logFieldBranchCountConstant               = "branches"
	logFieldFailureCountConstant              = "failures"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// RepositoryManager exposes the git operations needed to synchronize branches.
type RepositoryManager interface {
	FetchAll(executionContext context.Context, repositoryPath string) error
	ListRemoteBranches(executionContext context.Context, repositoryPath string) ([]gitrepo.RemoteBranch, error)
	RemoteBranchExists(executionContext context.Context, repositoryPath string, branch gitrepo.RemoteBranch) (bool, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CreateTrackingBranch(executionContext context.Context, repositoryPath string, branch gitrepo.RemoteBranch) error
	PullFastForward(executionContext context.Context, repositoryPath string, branch gitrepo.RemoteBranch) error
}

// Dependencies enumerates external collaborators required for synchronization.
type Dependencies struct {
	RepositoryManager RepositoryManager
	Logger            *zap.Logger
	// NetworkTimeout bounds each fetch and pull. Zero disables the bound.
	NetworkTimeout time.Duration
}

// Result captures the synchronization of one repository.
type Result struct {
	Repository shared.RepositoryHandle
	FetchError error
	Outcomes   []BranchOutcome
}

// FailureCount reports how many branches ended in a failed outcome.
func (result Result) FailureCount() int {
	failures := 0
	for _, outcome := range result.Outcomes {
		if outcome.Kind.Failed() {
			failures++
		}
	}
	return failures
}

// Service brings local branches in line with their remote counterparts.
type Service struct {
	repositoryManager RepositoryManager
	logger            *zap.Logger
	networkTimeout    time.Duration
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repositoryManager: dependencies.RepositoryManager,
		logger:            logger,
		networkTimeout:    dependencies.NetworkTimeout,
	}, nil
}

// Synchronize fetches all remotes and fast-forwards a local branch for every remote branch.
// Failures are recorded per branch and never returned; a failed fetch makes the call a no-op.
func (service *Service) Synchronize(executionContext context.Context, repository shared.RepositoryHandle) Result {
	result := Result{Repository: repository}
	repositoryField := zap.String(logFieldRepositoryConstant, repository.Name)

	fetchError := service.withNetworkTimeout(executionContext, func(networkContext context.Context) error {
		return service.repositoryManager.FetchAll(networkContext, repository.Path)
	})
	if fetchError != nil {
		result.FetchError = fetchError
		service.logger.Warn(fetchFailedLogMessageConstant, repositoryField, zap.Error(fetchError))
		return result
	}

	remoteBranches, listingError := service.repositoryManager.ListRemoteBranches(executionContext, repository.Path)
	if listingError != nil {
		result.FetchError = listingError
		service.logger.Warn(listingFailedLogMessageConstant, repositoryField, zap.Error(listingError))
		return result
	}

	for _, remoteBranch := range remoteBranches {
		if executionContext.Err() != nil {
			break
		}

		outcome := service.synchronizeBranch(executionContext, repository.Path, remoteBranch)
		result.Outcomes = append(result.Outcomes, outcome)

		branchField := zap.String(logFieldBranchConstant, remoteBranch.ShortReference())
		outcomeField := zap.Stringer(logFieldOutcomeConstant, outcome.Kind)
		switch {
		case outcome.Kind.Failed():
			service.logger.Warn(branchFailedLogMessageConstant, repositoryField, branchField, outcomeField, zap.Error(outcome.Reason))
		case outcome.Kind == OutcomeSkippedNotFound:
			service.logger.Info(branchSkippedLogMessageConstant, repositoryField, branchField)
		default:
			service.logger.Debug(branchSyncedLogMessageConstant, repositoryField, branchField, outcomeField)
		}
	}

	service.logger.Debug(
		synchronizationCompleteLogMessageConstant,
		repositoryField,
		zap.Int(logFieldBranchCountConstant, len(result.Outcomes)),
		zap.Int(logFieldFailureCountConstant, result.FailureCount()),
	)
	return result
}

func (service *Service) synchronizeBranch(executionContext context.Context, repositoryPath string, remoteBranch gitrepo.RemoteBranch) BranchOutcome {
	exists, lookupError := service.repositoryManager.RemoteBranchExists(executionContext, repositoryPath, remoteBranch)
	if lookupError != nil {
		return failedOutcome(remoteBranch, lookupError)
	}
	if !exists {
		return BranchOutcome{Branch: remoteBranch, Kind: OutcomeSkippedNotFound}
	}

	successKind := OutcomeSynced
	checkoutError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, remoteBranch.Name)
	var notFoundError gitrepo.BranchNotFoundError
	switch {
	case checkoutError == nil:
	case errors.As(checkoutError, &notFoundError):
		if creationError := service.repositoryManager.CreateTrackingBranch(executionContext, repositoryPath, remoteBranch); creationError != nil {
			return failedOutcome(remoteBranch, creationError)
		}
		successKind = OutcomeCreatedAndSynced
	default:
		return failedOutcome(remoteBranch, checkoutError)
	}

	pullError := service.withNetworkTimeout(executionContext, func(networkContext context.Context) error {
		return service.repositoryManager.PullFastForward(networkContext, repositoryPath, remoteBranch)
	})
	if pullError != nil {
		return failedOutcome(remoteBranch, pullError)
	}

	return BranchOutcome{Branch: remoteBranch, Kind: successKind}
}

func (service *Service) withNetworkTimeout(executionContext context.Context, operation func(context.Context) error) error {
	if service.networkTimeout <= 0 {
		return operation(executionContext)
	}
	networkContext, cancel := context.WithTimeout(executionContext, service.networkTimeout)
	defer cancel()
	return operation(networkContext)
}

func failedOutcome(branch gitrepo.RemoteBranch, reason error) BranchOutcome {
	if errors.Is(reason, context.DeadlineExceeded) {
		return BranchOutcome{Branch: branch, Kind: OutcomeFailedTimeout, Reason: reason}
	}
	return BranchOutcome{Branch: branch, Kind: OutcomeFailedOther, Reason: reason}
}
