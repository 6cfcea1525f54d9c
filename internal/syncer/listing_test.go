package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmonitor/internal/githubcli"
	"github.com/temirov/ghmonitor/internal/syncer"
)

type stubRepositoryLister struct {
	summaries       []githubcli.RepositorySummary
	err             error
	requestedOwner  string
	requestedLimits []int
}

func (lister *stubRepositoryLister) ListRepositories(_ context.Context, owner string, options githubcli.RepositoryListOptions) ([]githubcli.RepositorySummary, error) {
	lister.requestedOwner = owner
	lister.requestedLimits = append(lister.requestedLimits, options.ResultLimit)
	return lister.summaries, lister.err
}

func TestListRemoteRepositories(testInstance *testing.T) {
	now := time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	lister := &stubRepositoryLister{summaries: []githubcli.RepositorySummary{
		{Name: "fresh", SSHURL: "git@github.com:octo/fresh.git", HTTPSURL: "https://github.com/octo/fresh", PushedAt: now.Add(-48 * time.Hour)},
		{Name: "stale", SSHURL: "git@github.com:octo/stale.git", PushedAt: now.Add(-90 * 24 * time.Hour)},
	}}

	testInstance.Run("all_repositories", func(testInstance *testing.T) {
		repositories, listError := syncer.ListRemoteRepositories(context.Background(), lister, "octo", syncer.ListingOptions{}, clock)
		require.NoError(testInstance, listError)
		require.Len(testInstance, repositories, 2)
		require.Equal(testInstance, "octo", lister.requestedOwner)
		require.Equal(testInstance, syncer.RemoteRepository{
			Name:     "fresh",
			SSHURL:   "git@github.com:octo/fresh.git",
			HTTPSURL: "https://github.com/octo/fresh",
			PushedAt: now.Add(-48 * time.Hour),
		}, repositories[0])
	})

	testInstance.Run("since_days", func(testInstance *testing.T) {
		repositories, listError := syncer.ListRemoteRepositories(context.Background(), lister, "octo", syncer.ListingOptions{SinceDays: 30}, clock)
		require.NoError(testInstance, listError)
		require.Len(testInstance, repositories, 1)
		require.Equal(testInstance, "fresh", repositories[0].Name)
	})
}

func TestListRemoteRepositoriesFailures(testInstance *testing.T) {
	_, missingError := syncer.ListRemoteRepositories(context.Background(), nil, "octo", syncer.ListingOptions{}, nil)
	require.ErrorIs(testInstance, missingError, syncer.ErrRepositoryListerNotConfigured)

	listingFailure := errors.New("gh: not logged in")
	_, listError := syncer.ListRemoteRepositories(context.Background(), &stubRepositoryLister{err: listingFailure}, "octo", syncer.ListingOptions{}, nil)
	require.ErrorIs(testInstance, listError, listingFailure)
	require.Contains(testInstance, listError.Error(), "unable to list repositories for octo")
}
