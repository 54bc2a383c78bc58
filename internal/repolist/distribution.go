package repolist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	releaseFileURLTemplateConstant        = "%s/dists/%s/Release"
	httpClientMissingMessageConstant      = "http client not configured"
	archiveRequestFailureTemplateConstant = "distribution point request failed: %w"
	urlTrailingSlashConstant              = "/"
)

// ErrHTTPClientNotConfigured indicates the checker was built without an HTTP client.
var ErrHTTPClientNotConfigured = errors.New(httpClientMissingMessageConstant)

// HTTPClient performs HTTP requests. *http.Client satisfies the interface.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ArchiveDistributionChecker probes the remote archive for a published distribution.
type ArchiveDistributionChecker struct {
	httpClient HTTPClient
	archiveURL string
}

// NewArchiveDistributionChecker constructs a checker against the provided archive URL.
func NewArchiveDistributionChecker(httpClient HTTPClient, archiveURL string) (*ArchiveDistributionChecker, error) {
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}

	trimmedArchiveURL := strings.TrimSpace(archiveURL)
	if len(trimmedArchiveURL) == 0 {
		return nil, ErrArchiveURLRequired
	}

	return &ArchiveDistributionChecker{
		httpClient: httpClient,
		archiveURL: strings.TrimSuffix(trimmedArchiveURL, urlTrailingSlashConstant),
	}, nil
}

// DistributionPublished reports whether the archive serves a Release file for the distribution.
func (checker *ArchiveDistributionChecker) DistributionPublished(executionContext context.Context, distributionName string) (bool, error) {
	releaseURL := fmt.Sprintf(releaseFileURLTemplateConstant, checker.archiveURL, distributionName)

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, releaseURL, nil)
	if requestError != nil {
		return false, fmt.Errorf(archiveRequestFailureTemplateConstant, requestError)
	}

	response, responseError := checker.httpClient.Do(request)
	if responseError != nil {
		return false, fmt.Errorf(archiveRequestFailureTemplateConstant, responseError)
	}
	defer func() { _ = response.Body.Close() }()

	return response.StatusCode == http.StatusOK, nil
}
