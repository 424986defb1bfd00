package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitlog/internal/activity"
	"github.com/temirov/gitlog/internal/branches/synchronize"
	"github.com/temirov/gitlog/internal/commitlog"
	"github.com/temirov/gitlog/internal/document"
	"github.com/temirov/gitlog/internal/execshell"
	"github.com/temirov/gitlog/internal/gitrepo"
	"github.com/temirov/gitlog/internal/reportwindow"
	"github.com/temirov/gitlog/internal/repos/dependencies"
	"github.com/temirov/gitlog/internal/repos/shared"
	"github.com/temirov/gitlog/internal/timetracking"
	"github.com/temirov/gitlog/internal/utils"
	flagutils "github.com/temirov/gitlog/internal/utils/flags"
	pathutils "github.com/temirov/gitlog/internal/utils/path"
)

const (
	applicationNameConstant                  = "gitlog"
	applicationShortDescriptionConstant      = "Summarize a month of commits across the repositories in a directory"
	applicationLongDescriptionConstant       = "gitlog scans the immediate subdirectories of a root, optionally synchronizes every branch with its remote, collects the commits of a calendar month, and writes them to a Word or PDF document."
	configFileFlagNameConstant               = "config"
	configFileFlagUsageConstant              = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                 = "log-level"
	logLevelFlagUsageConstant                = "Override the configured log level."
	logFormatFlagNameConstant                = "log-format"
	logFormatFlagUsageConstant               = "Override the configured log format."
	monthFlagNameConstant                    = "month"
	monthFlagUsageConstant                   = "Month to report on, full or abbreviated name (required)."
	yearFlagNameConstant                     = "year"
	yearFlagUsageConstant                    = "Year of the reported month (defaults to the current year)."
	authorFlagNameConstant                   = "author"
	authorFlagUsageConstant                  = "Only include commits by this author (defaults to all authors)."
	fetchFlagNameConstant                    = "fetch"
	fetchFlagUsageConstant                   = "Fetch remotes and fast-forward every branch before reading the log."
	pdfFlagNameConstant                      = "pdf"
	pdfFlagUsageConstant                     = "Write a PDF document instead of a Word document."
	wakaFlagNameConstant                     = "waka"
	wakaFlagUsageConstant                    = "Add WakaTime editor time to every repository section."
	commonLogLevelConfigKeyConstant          = "common.log_level"
	commonLogFormatConfigKeyConstant         = "common.log_format"
	commonLogFileConfigKeyConstant           = "common.log_file"
	reportRootConfigKeyConstant              = "report.root"
	reportOutputDirectoryConfigKeyConstant   = "report.output_directory"
	reportAuthorConfigKeyConstant            = "report.author"
	reportFetchConfigKeyConstant             = "report.fetch"
	reportPDFConfigKeyConstant               = "report.pdf"
	reportWakaConfigKeyConstant              = "report.waka"
	reportConcurrencyConfigKeyConstant       = "report.concurrency"
	reportGitTimeoutConfigKeyConstant        = "report.git_timeout"
	reportTitleConfigKeyConstant             = "report.title"
	timeTrackingAPIURLConfigKeyConstant      = "timetracking.api_url"
	timeTrackingCredentialsConfigKeyConstant = "timetracking.credentials_path"
	timeTrackingTimeoutConfigKeyConstant     = "timetracking.timeout"
	timeTrackingMaxRetriesConfigKeyConstant  = "timetracking.max_retries"
	defaultRootPathConstant                  = "."
	defaultGitTimeoutConstant                = 30 * time.Second
	defaultTimeTrackingAPIURLConstant        = "https://wakatime.com/api/v1"
	defaultCredentialsPathConstant           = "~/.wakatime.cfg"
	defaultTimeTrackingTimeoutConstant       = 15 * time.Second
	defaultTimeTrackingMaxRetriesConstant    = 3
	environmentPrefixConstant                = "GITLOG"
	configurationNameConstant                = "config"
	configurationTypeConstant                = "yaml"
	configurationDirectoryNameConstant       = "gitlog"
	defaultConfigurationSearchPathConstant   = "."
	configurationInitializedMessageConstant  = "configuration initialized"
	configurationLogLevelFieldConstant       = "log_level"
	configurationLogFormatFieldConstant      = "log_format"
	configurationFileFieldConstant           = "config_file"
	reportStartedMessageConstant             = "report started"
	reportWrittenMessageConstant             = "report written"
	logFieldWindowConstant                   = "window"
	logFieldRootConstant                     = "root"
	logFieldAuthorConstant                   = "author"
	logFieldFetchConstant                    = "fetch"
	logFieldWakaConstant                     = "waka"
	logFieldOutputConstant                   = "output"
	logFieldProjectsConstant                 = "projects"
	configurationLoadErrorTemplateConstant   = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant      = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant          = "unable to flush logger: %w"
	rootPathErrorTemplateConstant            = "unable to resolve repository root %q: %w"
	outputDirectoryErrorTemplateConstant     = "unable to resolve output directory %q: %w"
	credentialsPathErrorTemplateConstant     = "unable to resolve credentials path %q: %w"
	collaboratorErrorTemplateConstant        = "unable to construct %s: %w"
	collectionErrorTemplateConstant          = "unable to collect commit activity: %w"
	documentErrorTemplateConstant            = "unable to write report: %w"
	reportWrittenTemplateConstant            = "Report written to %s\n"
	shellExecutorCollaboratorConstant        = "shell executor"
	repositoryManagerCollaboratorConstant    = "repository manager"
	discovererCollaboratorConstant           = "repository discoverer"
	aggregatorCollaboratorConstant           = "log aggregator"
	synchronizerCollaboratorConstant         = "branch synchronizer"
	activityCollaboratorConstant             = "activity service"
	documentWriterCollaboratorConstant       = "document writer"
)

var (
	supportedLogLevels  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	supportedLogFormats = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common       ApplicationCommonConfiguration       `mapstructure:"common"`
	Report       ApplicationReportConfiguration       `mapstructure:"report"`
	TimeTracking ApplicationTimeTrackingConfiguration `mapstructure:"timetracking"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationReportConfiguration controls which repositories are scanned and how the document is produced.
type ApplicationReportConfiguration struct {
	Root            string        `mapstructure:"root"`
	OutputDirectory string        `mapstructure:"output_directory"`
	Author          string        `mapstructure:"author"`
	Fetch           bool          `mapstructure:"fetch"`
	PDF             bool          `mapstructure:"pdf"`
	Waka            bool          `mapstructure:"waka"`
	Concurrency     int           `mapstructure:"concurrency"`
	GitTimeout      time.Duration `mapstructure:"git_timeout"`
	Title           string        `mapstructure:"title"`
}

// ApplicationTimeTrackingConfiguration configures the WakaTime client.
type ApplicationTimeTrackingConfiguration struct {
	APIURL          string        `mapstructure:"api_url"`
	CredentialsPath string        `mapstructure:"credentials_path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      uint64        `mapstructure:"max_retries"`
}

// Application wires the Cobra root command, configuration loader, structured logger, and report collaborators.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	monthFlagValue         string
	yearFlagValue          int
	authorFlagValue        string
	fetchFlagValue         bool
	pdfFlagValue           bool
	wakaFlagValue          bool
	reportWindow           reportwindow.Window
	commandContextAccessor utils.CommandContextAccessor
	clock                  reportwindow.Clock
	commandRunner          execshell.CommandRunner
	fileSystem             shared.FileSystem
	pathResolver           *pathutils.PathResolver
	httpClient             *http.Client
	promptInput            io.Reader
	promptOutput           io.Writer
	outputReporter         shared.Reporter
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		clock:                  reportwindow.SystemClock{},
		pathResolver:           pathutils.NewPathResolver(),
		promptInput:            os.Stdin,
		promptOutput:           os.Stderr,
		outputReporter:         shared.NewWriterReporter(os.Stdout),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runReport(command)
		},
	}

	cobraCommand.SetContext(context.Background())

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), supportedLogLevels, logLevelFlagUsageConstant))
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatConsole), supportedLogFormats, logFormatFlagUsageConstant))

	reportFlags := cobraCommand.Flags()
	reportFlags.StringVar(&application.monthFlagValue, monthFlagNameConstant, "", monthFlagUsageConstant)
	reportFlags.IntVar(&application.yearFlagValue, yearFlagNameConstant, 0, yearFlagUsageConstant)
	reportFlags.StringVar(&application.authorFlagValue, authorFlagNameConstant, "", authorFlagUsageConstant)
	flagutils.AddToggleFlag(reportFlags, &application.fetchFlagValue, fetchFlagNameConstant, false, fetchFlagUsageConstant)
	flagutils.AddToggleFlag(reportFlags, &application.pdfFlagValue, pdfFlagNameConstant, false, pdfFlagUsageConstant)
	flagutils.AddToggleFlag(reportFlags, &application.wakaFlagValue, wakaFlagNameConstant, false, wakaFlagUsageConstant)
	_ = cobraCommand.MarkFlagRequired(monthFlagNameConstant)

	configurationLoader.BindFlag(commonLogLevelConfigKeyConstant, persistentFlags.Lookup(logLevelFlagNameConstant))
	configurationLoader.BindFlag(commonLogFormatConfigKeyConstant, persistentFlags.Lookup(logFormatFlagNameConstant))
	configurationLoader.BindFlag(reportAuthorConfigKeyConstant, reportFlags.Lookup(authorFlagNameConstant))
	configurationLoader.BindFlag(reportFetchConfigKeyConstant, reportFlags.Lookup(fetchFlagNameConstant))
	configurationLoader.BindFlag(reportPDFConfigKeyConstant, reportFlags.Lookup(pdfFlagNameConstant))
	configurationLoader.BindFlag(reportWakaConfigKeyConstant, reportFlags.Lookup(wakaFlagNameConstant))

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.executeWithArguments(os.Args[1:])
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) executeWithArguments(arguments []string) error {
	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	reportWindow, windowError := reportwindow.NewResolver(application.clock).Resolve(reportwindow.Request{
		Month: application.monthFlagValue,
		Year:  application.yearFlagValue,
	})
	if windowError != nil {
		return windowError
	}
	application.reportWindow = reportWindow

	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:          string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:         string(utils.LogFormatConsole),
		commonLogFileConfigKeyConstant:           "",
		reportRootConfigKeyConstant:              defaultRootPathConstant,
		reportOutputDirectoryConfigKeyConstant:   defaultRootPathConstant,
		reportAuthorConfigKeyConstant:            "",
		reportFetchConfigKeyConstant:             false,
		reportPDFConfigKeyConstant:               false,
		reportWakaConfigKeyConstant:              false,
		reportConcurrencyConfigKeyConstant:       0,
		reportGitTimeoutConfigKeyConstant:        defaultGitTimeoutConstant,
		reportTitleConfigKeyConstant:             document.DefaultTitleConstant,
		timeTrackingAPIURLConfigKeyConstant:      defaultTimeTrackingAPIURLConstant,
		timeTrackingCredentialsConfigKeyConstant: defaultCredentialsPathConstant,
		timeTrackingTimeoutConfigKeyConstant:     defaultTimeTrackingTimeoutConstant,
		timeTrackingMaxRetriesConfigKeyConstant:  defaultTimeTrackingMaxRetriesConstant,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerConfiguration{
		Level:    utils.LogLevel(application.configuration.Common.LogLevel),
		Format:   utils.LogFormat(application.configuration.Common.LogFormat),
		FilePath: application.configuration.Common.LogFile,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		command.SetContext(application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		))
	}

	return nil
}

func (application *Application) runReport(command *cobra.Command) error {
	reportConfiguration := application.configuration.Report

	rootPath, rootError := application.pathResolver.Resolve(reportConfiguration.Root)
	if rootError != nil {
		return fmt.Errorf(rootPathErrorTemplateConstant, reportConfiguration.Root, rootError)
	}
	outputDirectory, outputError := application.pathResolver.Resolve(reportConfiguration.OutputDirectory)
	if outputError != nil {
		return fmt.Errorf(outputDirectoryErrorTemplateConstant, reportConfiguration.OutputDirectory, outputError)
	}

	activityService, serviceError := application.buildActivityService()
	if serviceError != nil {
		return serviceError
	}
	documentWriter, writerError := document.NewWriter(dependencies.ResolveFileSystem(application.fileSystem), nil)
	if writerError != nil {
		return fmt.Errorf(collaboratorErrorTemplateConstant, documentWriterCollaboratorConstant, writerError)
	}

	configurationFilePath, _ := application.commandContextAccessor.ConfigurationFilePath(command.Context())
	application.logger.Info(
		reportStartedMessageConstant,
		zap.Stringer(logFieldWindowConstant, application.reportWindow),
		zap.String(logFieldRootConstant, rootPath),
		zap.String(logFieldAuthorConstant, reportConfiguration.Author),
		zap.Bool(logFieldFetchConstant, reportConfiguration.Fetch),
		zap.Bool(logFieldWakaConstant, reportConfiguration.Waka),
		zap.String(configurationFileFieldConstant, configurationFilePath),
	)

	collection, collectionError := activityService.Collect(command.Context(), activity.Options{
		Root:                rootPath,
		Window:              application.reportWindow,
		Author:              reportConfiguration.Author,
		SynchronizeBranches: reportConfiguration.Fetch,
		IncludeTrackedTime:  reportConfiguration.Waka,
		Concurrency:         reportConfiguration.Concurrency,
	})
	if collectionError != nil {
		return fmt.Errorf(collectionErrorTemplateConstant, collectionError)
	}

	outputPath, documentError := documentWriter.Write(
		document.Report{Title: reportConfiguration.Title, Projects: collection.Reports},
		outputDirectory,
		document.FormatFromPDFFlag(reportConfiguration.PDF),
	)
	if documentError != nil {
		return fmt.Errorf(documentErrorTemplateConstant, documentError)
	}

	application.logger.Info(
		reportWrittenMessageConstant,
		zap.String(logFieldOutputConstant, outputPath),
		zap.Int(logFieldProjectsConstant, len(collection.Reports)),
	)
	application.outputReporter.Printf(reportWrittenTemplateConstant, outputPath)
	return nil
}

func (application *Application) buildActivityService() (*activity.Service, error) {
	reportConfiguration := application.configuration.Report

	shellExecutor, executorError := dependencies.ResolveGitExecutor(application.commandRunner, application.logger)
	if executorError != nil {
		return nil, fmt.Errorf(collaboratorErrorTemplateConstant, shellExecutorCollaboratorConstant, executorError)
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, fmt.Errorf(collaboratorErrorTemplateConstant, repositoryManagerCollaboratorConstant, managerError)
	}
	repositoryDiscoverer, discovererError := dependencies.ResolveRepositoryDiscoverer(application.fileSystem, repositoryManager, application.logger)
	if discovererError != nil {
		return nil, fmt.Errorf(collaboratorErrorTemplateConstant, discovererCollaboratorConstant, discovererError)
	}
	logAggregator, aggregatorError := commitlog.NewAggregator(shellExecutor)
	if aggregatorError != nil {
		return nil, fmt.Errorf(collaboratorErrorTemplateConstant, aggregatorCollaboratorConstant, aggregatorError)
	}

	serviceDependencies := activity.Dependencies{
		Discoverer: repositoryDiscoverer,
		Aggregator: logAggregator,
		Logger:     application.logger,
	}

	if reportConfiguration.Fetch {
		branchSynchronizer, synchronizerError := synchronize.NewService(synchronize.Dependencies{
			RepositoryManager: repositoryManager,
			Logger:            application.logger,
			NetworkTimeout:    reportConfiguration.GitTimeout,
		})
		if synchronizerError != nil {
			return nil, fmt.Errorf(collaboratorErrorTemplateConstant, synchronizerCollaboratorConstant, synchronizerError)
		}
		serviceDependencies.Synchronizer = branchSynchronizer
	}

	if reportConfiguration.Waka {
		serviceDependencies.TimeLookup = timetracking.NewLazyLookup(application.timeTrackingClientFactory())
	}

	activityService, serviceError := activity.NewService(serviceDependencies)
	if serviceError != nil {
		return nil, fmt.Errorf(collaboratorErrorTemplateConstant, activityCollaboratorConstant, serviceError)
	}
	return activityService, nil
}

func (application *Application) timeTrackingClientFactory() timetracking.ClientFactory {
	timeTrackingConfiguration := application.configuration.TimeTracking
	return func() (*timetracking.Client, error) {
		credentialsPath, pathError := application.pathResolver.ExpandHome(timeTrackingConfiguration.CredentialsPath)
		if pathError != nil {
			return nil, fmt.Errorf(credentialsPathErrorTemplateConstant, timeTrackingConfiguration.CredentialsPath, pathError)
		}

		prompter := timetracking.NewIOPrompter(application.promptInput, application.promptOutput)
		credentialStore, storeError := timetracking.NewFileCredentialStore(credentialsPath, prompter)
		if storeError != nil {
			return nil, storeError
		}

		return timetracking.NewClient(
			timetracking.ClientConfiguration{
				BaseURL:    timeTrackingConfiguration.APIURL,
				Timeout:    timeTrackingConfiguration.Timeout,
				MaxRetries: timeTrackingConfiguration.MaxRetries,
			},
			credentialStore,
			application.httpClient,
			application.logger,
		)
	}
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	userConfigurationDirectory, directoryError := os.UserConfigDir()
	if directoryError == nil && len(strings.TrimSpace(userConfigurationDirectory)) > 0 {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}
