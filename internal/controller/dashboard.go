package controller

import (
	"context"
	"sync"

	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/models"
)

type DashboardStats struct {
	TotalPosts        int
	ScheduledPosts    int
	PublishedPosts    int
	FailedPosts       int
	ConnectedAccounts int
	ActiveAccounts    int
}

type DashboardSnapshot struct {
	Posts    []models.Post
	Accounts []models.SocialAccount
	Stats    DashboardStats
}

// DashboardController loads the posts and accounts lists in parallel and
// derives the counters shown on the dashboard. Both fetches are awaited
// before anything is computed; neither result is used on its own.
type DashboardController struct {
	posts    *apiclient.PostsClient
	accounts *apiclient.AccountsClient
}

func NewDashboardController(posts *apiclient.PostsClient, accounts *apiclient.AccountsClient) *DashboardController {
	return &DashboardController{posts: posts, accounts: accounts}
}

func (d *DashboardController) Load(ctx context.Context) (*DashboardSnapshot, error) {
	var (
		wg          sync.WaitGroup
		posts       []models.Post
		accounts    []models.SocialAccount
		postsErr    error
		accountsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		posts, postsErr = d.posts.List(ctx)
	}()
	go func() {
		defer wg.Done()
		accounts, accountsErr = d.accounts.List(ctx)
	}()
	wg.Wait()

	if postsErr != nil {
		return nil, postsErr
	}
	if accountsErr != nil {
		return nil, accountsErr
	}

	snapshot := &DashboardSnapshot{
		Posts:    posts,
		Accounts: accounts,
		Stats:    computeStats(posts, accounts),
	}
	return snapshot, nil
}

func computeStats(posts []models.Post, accounts []models.SocialAccount) DashboardStats {
	stats := DashboardStats{
		TotalPosts:        len(posts),
		ConnectedAccounts: len(accounts),
	}
	for _, p := range posts {
		switch p.Status {
		case models.PostStatusScheduled:
			stats.ScheduledPosts++
		case models.PostStatusPosted:
			stats.PublishedPosts++
		case models.PostStatusFailed:
			stats.FailedPosts++
		}
	}
	for _, a := range accounts {
		if a.IsActive {
			stats.ActiveAccounts++
		}
	}
	return stats
}
