package cistatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	pullRequestURLTemplateConstant        = "%s/repos/%s/pulls/%d"
	latestBuildURLTemplateConstant        = "%s/job/%s/job/%s/lastBuild/api/json"
	acceptHeaderNameConstant              = "Accept"
	acceptJSONHeaderValueConstant         = "application/json"
	successfulBuildResultConstant         = "SUCCESS"
	httpClientMissingMessageConstant      = "http client not configured"
	forgeAPIURLMissingMessageConstant     = "forge API URL must be provided"
	ciURLMissingMessageConstant           = "CI URL must be provided"
	projectRequiredMessageConstant        = "project must be provided"
	branchRequiredMessageConstant         = "branch must be provided"
	headBranchMissingMessageConstant      = "pull request response did not name a head branch"
	pullRequestNotFoundTemplateConstant   = "pull request %d not found for project %s"
	buildNotFoundTemplateConstant         = "no build found for branch %q of project %s"
	lookupRequestFailureTemplateConstant  = "%s lookup request failed: %w"
	lookupDecodingFailureTemplateConstant = "%s response decoding failed: %w"
	pullRequestLookupNameConstant         = "pull request"
	buildLookupNameConstant               = "build"
	urlTrailingSlashConstant              = "/"
)

// ErrHTTPClientNotConfigured indicates the resolver was built without an HTTP client.
var ErrHTTPClientNotConfigured = errors.New(httpClientMissingMessageConstant)

// ErrForgeAPIURLRequired indicates the resolver was built without a forge API URL.
var ErrForgeAPIURLRequired = errors.New(forgeAPIURLMissingMessageConstant)

// ErrCIURLRequired indicates the resolver was built without a CI URL.
var ErrCIURLRequired = errors.New(ciURLMissingMessageConstant)

// ErrProjectRequired indicates a lookup received an empty project identifier.
var ErrProjectRequired = errors.New(projectRequiredMessageConstant)

// ErrBranchRequired indicates a build lookup received an empty branch name.
var ErrBranchRequired = errors.New(branchRequiredMessageConstant)

// ErrHeadBranchMissing indicates the forge response omitted the head branch name.
var ErrHeadBranchMissing = errors.New(headBranchMissingMessageConstant)

// PullRequestNotFoundError reports a pull request lookup that did not succeed.
type PullRequestNotFoundError struct {
	Project           string
	PullRequestNumber int
}

// Error describes the missing pull request.
func (notFoundError PullRequestNotFoundError) Error() string {
	return fmt.Sprintf(pullRequestNotFoundTemplateConstant, notFoundError.PullRequestNumber, notFoundError.Project)
}

// BuildNotFoundError reports a CI build lookup that did not succeed.
type BuildNotFoundError struct {
	Project string
	Branch  string
}

// Error describes the missing build record.
func (notFoundError BuildNotFoundError) Error() string {
	return fmt.Sprintf(buildNotFoundTemplateConstant, notFoundError.Branch, notFoundError.Project)
}

// HTTPClient performs HTTP requests. *http.Client satisfies the interface.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Options configures the endpoints queried by the resolver.
type Options struct {
	ForgeAPIURL string
	CIURL       string
}

// Resolver performs pull request and build status lookups.
type Resolver struct {
	httpClient  HTTPClient
	forgeAPIURL string
	ciURL       string
}

// NewResolver constructs a Resolver from the provided client and endpoints.
func NewResolver(httpClient HTTPClient, options Options) (*Resolver, error) {
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}

	trimmedForgeAPIURL := strings.TrimSpace(options.ForgeAPIURL)
	if len(trimmedForgeAPIURL) == 0 {
		return nil, ErrForgeAPIURLRequired
	}

	trimmedCIURL := strings.TrimSpace(options.CIURL)
	if len(trimmedCIURL) == 0 {
		return nil, ErrCIURLRequired
	}

	return &Resolver{
		httpClient:  httpClient,
		forgeAPIURL: strings.TrimSuffix(trimmedForgeAPIURL, urlTrailingSlashConstant),
		ciURL:       strings.TrimSuffix(trimmedCIURL, urlTrailingSlashConstant),
	}, nil
}

// ResolveBranch queries the forge for the pull request and returns its head branch name.
func (resolver *Resolver) ResolveBranch(executionContext context.Context, project string, pullRequestNumber int) (string, error) {
	trimmedProject := strings.TrimSpace(project)
	if len(trimmedProject) == 0 {
		return "", ErrProjectRequired
	}

	lookupURL := fmt.Sprintf(pullRequestURLTemplateConstant, resolver.forgeAPIURL, trimmedProject, pullRequestNumber)

	var pullRequestResponse struct {
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
	}

	notFoundError := PullRequestNotFoundError{Project: trimmedProject, PullRequestNumber: pullRequestNumber}
	if lookupError := resolver.lookup(executionContext, pullRequestLookupNameConstant, lookupURL, notFoundError, &pullRequestResponse); lookupError != nil {
		return "", lookupError
	}

	headBranch := strings.TrimSpace(pullRequestResponse.Head.Ref)
	if len(headBranch) == 0 {
		return "", ErrHeadBranchMissing
	}

	return headBranch, nil
}

// ResolveBuildStatus queries the CI system for the latest build of the branch
// and maps its result onto the BuildStatus enumeration.
func (resolver *Resolver) ResolveBuildStatus(executionContext context.Context, project string, branch string) (BuildStatus, error) {
	trimmedProject := strings.TrimSpace(project)
	if len(trimmedProject) == 0 {
		return BuildStatusFailed, ErrProjectRequired
	}

	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return BuildStatusFailed, ErrBranchRequired
	}

	lookupURL := fmt.Sprintf(
		latestBuildURLTemplateConstant,
		resolver.ciURL,
		url.PathEscape(trimmedProject),
		url.PathEscape(trimmedBranch),
	)

	var buildResponse struct {
		Building bool   `json:"building"`
		Result   string `json:"result"`
	}

	notFoundError := BuildNotFoundError{Project: trimmedProject, Branch: trimmedBranch}
	if lookupError := resolver.lookup(executionContext, buildLookupNameConstant, lookupURL, notFoundError, &buildResponse); lookupError != nil {
		return BuildStatusFailed, lookupError
	}

	buildResult := strings.TrimSpace(buildResponse.Result)
	switch {
	case buildResponse.Building || len(buildResult) == 0:
		return BuildStatusBuilding, nil
	case buildResult == successfulBuildResultConstant:
		return BuildStatusSuccess, nil
	default:
		return BuildStatusFailed, nil
	}
}

func (resolver *Resolver) lookup(executionContext context.Context, lookupName string, lookupURL string, notFoundError error, target any) error {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, lookupURL, nil)
	if requestError != nil {
		return fmt.Errorf(lookupRequestFailureTemplateConstant, lookupName, requestError)
	}
	request.Header.Set(acceptHeaderNameConstant, acceptJSONHeaderValueConstant)

	response, responseError := resolver.httpClient.Do(request)
	if responseError != nil {
		return fmt.Errorf(lookupRequestFailureTemplateConstant, lookupName, responseError)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return notFoundError
	}

	if decodingError := json.NewDecoder(response.Body).Decode(target); decodingError != nil {
		return fmt.Errorf(lookupDecodingFailureTemplateConstant, lookupName, decodingError)
	}

	return nil
}
