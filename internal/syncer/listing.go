package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/temirov/ghmonitor/internal/githubcli"
)

const (
	repositoryListerMissingMessageConstant = "repository lister not configured"
	listingFailedErrorTemplateConstant     = "unable to list repositories for %s: %w"
	hoursPerDayConstant                    = 24
)

// ErrRepositoryListerNotConfigured indicates the listing provider was missing.
var ErrRepositoryListerNotConfigured = errors.New(repositoryListerMissingMessageConstant)

// RepositoryLister enumerates the repositories owned by a user or organization.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context, owner string, options githubcli.RepositoryListOptions) ([]githubcli.RepositorySummary, error)
}

// Clock supplies the current time.
type Clock func() time.Time

// ListingOptions narrows the owner listing.
type ListingOptions struct {
	SinceDays   int
	ResultLimit int
}

// ListRemoteRepositories returns the owner's repositories in listing order. A positive SinceDays keeps only
// repositories pushed within that many days.
func ListRemoteRepositories(executionContext context.Context, lister RepositoryLister, owner string, options ListingOptions, clock Clock) ([]RemoteRepository, error) {
	if lister == nil {
		return nil, ErrRepositoryListerNotConfigured
	}
	if clock == nil {
		clock = time.Now
	}

	summaries, listError := lister.ListRepositories(executionContext, owner, githubcli.RepositoryListOptions{ResultLimit: options.ResultLimit})
	if listError != nil {
		return nil, fmt.Errorf(listingFailedErrorTemplateConstant, owner, listError)
	}

	if options.SinceDays > 0 {
		cutoff := clock().Add(-time.Duration(options.SinceDays) * hoursPerDayConstant * time.Hour)
		summaries = githubcli.PushedSince(summaries, cutoff)
	}

	repositories := make([]RemoteRepository, 0, len(summaries))
	for _, summary := range summaries {
		repositories = append(repositories, RemoteRepository{
			Name:     summary.Name,
			HTTPSURL: summary.HTTPSURL,
			SSHURL:   summary.SSHURL,
			PushedAt: summary.PushedAt,
		})
	}
	return repositories, nil
}
