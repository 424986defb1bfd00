package timetracking_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlog/internal/reportwindow"
	"github.com/temirov/gitlog/internal/timetracking"
)

const (
	testAPIKeyConstant         = "waka_0123456789"
	testProjectNameConstant    = "alpha"
	summariesBodyConstant      = `{"cumulative_total":{"seconds":11100.5,"text":"3 hrs 5 mins","decimal":"3.08"},"data":[]}`
	emptySummariesBodyConstant = `{"cumulative_total":{"seconds":0,"text":"0 secs"},"data":[]}`
)

type countingCredentialProvider struct {
	key   string
	calls int
}

func (provider *countingCredentialProvider) APIKey() (string, error) {
	provider.calls++
	return provider.key, nil
}

func decemberWindow() reportwindow.Window {
	return reportwindow.Window{
		After: time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

func newTestClient(testInstance *testing.T, serverURL string, provider timetracking.CredentialProvider, maxRetries uint64) *timetracking.Client {
	testInstance.Helper()
	client, creationError := timetracking.NewClient(
		timetracking.ClientConfiguration{BaseURL: serverURL + "/", Timeout: time.Second, MaxRetries: maxRetries},
		provider,
		nil,
		nil,
	)
	require.NoError(testInstance, creationError)
	return client
}

func TestClientTrackedTimeRequestsSummaries(testInstance *testing.T) {
	capturedRequests := make(chan *http.Request, 2)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		capturedRequests <- request.Clone(context.Background())
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(summariesBodyConstant))
	}))
	defer server.Close()

	provider := &countingCredentialProvider{key: testAPIKeyConstant}
	client := newTestClient(testInstance, server.URL, provider, 0)

	trackedTime, lookupError := client.TrackedTime(context.Background(), testProjectNameConstant, decemberWindow())
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "3 hrs 5 mins", trackedTime)

	capturedRequest := <-capturedRequests
	require.Equal(testInstance, "/users/current/summaries", capturedRequest.URL.Path)
	require.Equal(testInstance, "2024-12-01", capturedRequest.URL.Query().Get("start"))
	require.Equal(testInstance, "2024-12-31", capturedRequest.URL.Query().Get("end"))
	require.Equal(testInstance, testProjectNameConstant, capturedRequest.URL.Query().Get("project"))
	require.Equal(testInstance, "Basic "+base64.StdEncoding.EncodeToString([]byte(testAPIKeyConstant)), capturedRequest.Header.Get("Authorization"))

	_, secondLookupError := client.TrackedTime(context.Background(), "beta", decemberWindow())
	require.NoError(testInstance, secondLookupError)
	require.Equal(testInstance, 1, provider.calls)
}

func TestClientTrackedTimeReturnsEmptyWhenNothingTracked(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(emptySummariesBodyConstant))
	}))
	defer server.Close()

	client := newTestClient(testInstance, server.URL, timetracking.StaticCredentialProvider(testAPIKeyConstant), 0)
	trackedTime, lookupError := client.TrackedTime(context.Background(), testProjectNameConstant, decemberWindow())
	require.NoError(testInstance, lookupError)
	require.Empty(testInstance, trackedTime)
}

func TestClientTrackedTimeRetriesServerErrors(testInstance *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if requestCount.Add(1) < 3 {
			writer.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = writer.Write([]byte(summariesBodyConstant))
	}))
	defer server.Close()

	client := newTestClient(testInstance, server.URL, timetracking.StaticCredentialProvider(testAPIKeyConstant), 3)
	trackedTime, lookupError := client.TrackedTime(context.Background(), testProjectNameConstant, decemberWindow())
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "3 hrs 5 mins", trackedTime)
	require.EqualValues(testInstance, 3, requestCount.Load())
}

func TestClientTrackedTimeDoesNotRetryClientErrors(testInstance *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		requestCount.Add(1)
		writer.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(testInstance, server.URL, timetracking.StaticCredentialProvider(testAPIKeyConstant), 3)
	_, lookupError := client.TrackedTime(context.Background(), testProjectNameConstant, decemberWindow())

	var statusError timetracking.StatusError
	require.ErrorAs(testInstance, lookupError, &statusError)
	require.Equal(testInstance, http.StatusUnauthorized, statusError.StatusCode)
	require.EqualValues(testInstance, 1, requestCount.Load())
}

func TestClientTrackedTimeRejectsMalformedBody(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client := newTestClient(testInstance, server.URL, timetracking.StaticCredentialProvider(testAPIKeyConstant), 0)
	_, lookupError := client.TrackedTime(context.Background(), testProjectNameConstant, decemberWindow())
	require.ErrorIs(testInstance, lookupError, timetracking.ErrMalformedResponse)
}

func TestNewClientValidatesConfiguration(testInstance *testing.T) {
	_, missingURLError := timetracking.NewClient(timetracking.ClientConfiguration{}, timetracking.StaticCredentialProvider(testAPIKeyConstant), nil, nil)
	require.ErrorIs(testInstance, missingURLError, timetracking.ErrBaseURLNotConfigured)

	_, missingCredentialsError := timetracking.NewClient(timetracking.ClientConfiguration{BaseURL: "https://example.invalid"}, nil, nil, nil)
	require.ErrorIs(testInstance, missingCredentialsError, timetracking.ErrCredentialProviderNotConfigured)
}

func TestLazyLookupBuildsClientOnce(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(summariesBodyConstant))
	}))
	defer server.Close()

	var factoryCalls atomic.Int32
	lookup := timetracking.NewLazyLookup(func() (*timetracking.Client, error) {
		factoryCalls.Add(1)
		return timetracking.NewClient(
			timetracking.ClientConfiguration{BaseURL: server.URL},
			timetracking.StaticCredentialProvider(testAPIKeyConstant),
			server.Client(),
			nil,
		)
	})
	require.EqualValues(testInstance, 0, factoryCalls.Load())

	for _, project := range []string{"alpha", "beta", "gamma"} {
		trackedTime, lookupError := lookup.TrackedTime(context.Background(), project, decemberWindow())
		require.NoError(testInstance, lookupError)
		require.Equal(testInstance, "3 hrs 5 mins", trackedTime)
	}
	require.EqualValues(testInstance, 1, factoryCalls.Load())
}
