package timetracking

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/temirov/gitlog/internal/reportwindow"
)

const (
	summariesPathConstant             = "/users/current/summaries"
	startParameterConstant            = "start"
	endParameterConstant              = "end"
	projectParameterConstant          = "project"
	authorizationHeaderConstant       = "Authorization"
	acceptHeaderConstant              = "Accept"
	jsonContentTypeConstant           = "application/json"
	basicAuthorizationPrefixConstant  = "Basic "
	cumulativeTextPathConstant        = "cumulative_total.text"
	cumulativeSecondsPathConstant     = "cumulative_total.seconds"
	dateLayoutConstant                = "2006-01-02"
	maximumResponseBytesConstant      = 1 << 20
	retryInitialIntervalConstant      = 250 * time.Millisecond
	retryMaxIntervalConstant          = 2 * time.Second
	baseURLMissingMessageConstant     = "time tracking API URL not configured"
	credentialsMissingMessageConstant = "time tracking credential provider not configured"
	malformedResponseMessageConstant  = "time tracking response is not valid JSON"
	statusErrorTemplateConstant       = "time tracking API responded with status %d"
	requestErrorTemplateConstant      = "time tracking request failed: %w"
	retryLogMessageConstant           = "Retrying time tracking request"
	logFieldProjectConstant           = "project"
	logFieldDelayConstant             = "delay"
)

// ErrBaseURLNotConfigured indicates the client was constructed without an API URL.
var ErrBaseURLNotConfigured = errors.New(baseURLMissingMessageConstant)

// ErrCredentialProviderNotConfigured indicates the client was constructed without credentials.
var ErrCredentialProviderNotConfigured = errors.New(credentialsMissingMessageConstant)

// ErrMalformedResponse indicates the API returned a body that is not JSON.
var ErrMalformedResponse = errors.New(malformedResponseMessageConstant)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	StatusCode int
}

// Error describes the unexpected status.
func (statusError StatusError) Error() string {
	return fmt.Sprintf(statusErrorTemplateConstant, statusError.StatusCode)
}

// ClientConfiguration describes how to reach the time tracking API.
type ClientConfiguration struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
}

// Client queries cumulative tracked time per project.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries uint64
	apiKey     func() (string, error)
	logger     *zap.Logger
}

// NewClient constructs a Client. The credential provider is consulted once, on the first lookup.
func NewClient(configuration ClientConfiguration, credentials CredentialProvider, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/")
	if len(trimmedBaseURL) == 0 {
		return nil, ErrBaseURLNotConfigured
	}
	if credentials == nil {
		return nil, ErrCredentialProviderNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    trimmedBaseURL,
		maxRetries: configuration.MaxRetries,
		apiKey:     sync.OnceValues(credentials.APIKey),
		logger:     logger,
	}, nil
}

// TrackedTime returns the human-readable cumulative time for the project within the window.
// An empty string means nothing was tracked.
func (client *Client) TrackedTime(executionContext context.Context, project string, window reportwindow.Window) (string, error) {
	apiKey, credentialError := client.apiKey()
	if credentialError != nil {
		return "", credentialError
	}

	requestURL := client.summariesURL(project, window)
	var responseBody []byte
	operation := func() error {
		body, requestError := client.fetch(executionContext, requestURL, apiKey)
		if requestError != nil {
			return requestError
		}
		responseBody = body
		return nil
	}
	notify := func(operationError error, delay time.Duration) {
		client.logger.Debug(retryLogMessageConstant, zap.String(logFieldProjectConstant, project), zap.Duration(logFieldDelayConstant, delay), zap.Error(operationError))
	}

	if retryError := backoff.RetryNotify(operation, client.newRetryBackoff(executionContext), notify); retryError != nil {
		return "", retryError
	}

	if !gjson.ValidBytes(responseBody) {
		return "", ErrMalformedResponse
	}
	if gjson.GetBytes(responseBody, cumulativeSecondsPathConstant).Float() <= 0 {
		return "", nil
	}
	return strings.TrimSpace(gjson.GetBytes(responseBody, cumulativeTextPathConstant).String()), nil
}

func (client *Client) newRetryBackoff(executionContext context.Context) backoff.BackOff {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = retryInitialIntervalConstant
	exponentialBackoff.MaxInterval = retryMaxIntervalConstant
	exponentialBackoff.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exponentialBackoff, client.maxRetries), executionContext)
}

// summariesURL covers the days after window.After through window.Until, matching the git date filters.
func (client *Client) summariesURL(project string, window reportwindow.Window) string {
	query := url.Values{}
	query.Set(startParameterConstant, window.After.AddDate(0, 0, 1).Format(dateLayoutConstant))
	query.Set(endParameterConstant, window.Until.Format(dateLayoutConstant))
	query.Set(projectParameterConstant, project)
	return client.baseURL + summariesPathConstant + "?" + query.Encode()
}

func (client *Client) fetch(executionContext context.Context, requestURL string, apiKey string) ([]byte, error) {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL, nil)
	if requestError != nil {
		return nil, backoff.Permanent(requestError)
	}
	request.Header.Set(authorizationHeaderConstant, basicAuthorizationPrefixConstant+base64.StdEncoding.EncodeToString([]byte(apiKey)))
	request.Header.Set(acceptHeaderConstant, jsonContentTypeConstant)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(requestErrorTemplateConstant, responseError)
	}
	defer response.Body.Close()

	body, readError := io.ReadAll(io.LimitReader(response.Body, maximumResponseBytesConstant))
	if readError != nil {
		return nil, fmt.Errorf(requestErrorTemplateConstant, readError)
	}

	switch {
	case response.StatusCode == http.StatusOK:
		return body, nil
	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= http.StatusInternalServerError:
		return nil, StatusError{StatusCode: response.StatusCode}
	default:
		return nil, backoff.Permanent(StatusError{StatusCode: response.StatusCode})
	}
}
