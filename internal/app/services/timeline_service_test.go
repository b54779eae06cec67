package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmapteam/knowledgemap/internal/app/models"
)

func datedPost(id, branchID int64, branchTitle, eventDate string) *models.Post {
	t, err := time.Parse(time.DateOnly, eventDate)
	if err != nil {
		panic(err)
	}
	return &models.Post{
		ID:          id,
		BranchID:    branchID,
		BranchTitle: branchTitle,
		Title:       branchTitle + " post",
		EventDate:   t,
	}
}

func TestBuildTimelineEmpty(t *testing.T) {
	buckets := BuildTimeline(nil)
	assert.Empty(t, buckets)
	assert.NotNil(t, buckets)
}

func TestBuildTimelineGroupsByMonthAscending(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 10, "Reading", "2024-03-05"),
		datedPost(2, 10, "Reading", "2024-01-20"),
		datedPost(3, 11, "Running", "2024-03-12"),
		datedPost(4, 10, "Reading", "2023-11-02"),
	}

	buckets := BuildTimeline(posts)
	require.Len(t, buckets, 3)

	assert.Equal(t, 2023, buckets[0].Year)
	assert.Equal(t, 11, buckets[0].Month)
	assert.Equal(t, 2024, buckets[1].Year)
	assert.Equal(t, 1, buckets[1].Month)
	assert.Equal(t, 2024, buckets[2].Year)
	assert.Equal(t, 3, buckets[2].Month)

	assert.Equal(t, int64(1), buckets[0].PostsCount)
	assert.Equal(t, int64(1), buckets[1].PostsCount)
	assert.Equal(t, int64(2), buckets[2].PostsCount)
}

func TestBuildTimelineYearBoundary(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 10, "Reading", "2024-01-01"),
		datedPost(2, 10, "Reading", "2023-12-31"),
	}

	buckets := BuildTimeline(posts)
	require.Len(t, buckets, 2)
	assert.Equal(t, 2023, buckets[0].Year)
	assert.Equal(t, 12, buckets[0].Month)
	assert.Equal(t, 2024, buckets[1].Year)
	assert.Equal(t, 1, buckets[1].Month)
}

func TestBuildTimelineBranchBreakdown(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 10, "Reading", "2024-03-05"),
		datedPost(2, 10, "Reading", "2024-03-08"),
		datedPost(3, 11, "Running", "2024-03-12"),
	}

	buckets := BuildTimeline(posts)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Branches, 2)

	// Most posts first
	assert.Equal(t, int64(10), buckets[0].Branches[0].BranchID)
	assert.Equal(t, "Reading", buckets[0].Branches[0].Title)
	assert.Equal(t, int64(2), buckets[0].Branches[0].PostsCount)
	assert.Equal(t, int64(11), buckets[0].Branches[1].BranchID)
	assert.Equal(t, int64(1), buckets[0].Branches[1].PostsCount)
}

func TestBuildTimelineBranchesKeyedByIdentity(t *testing.T) {
	// Two different users' branches can share a title; they must not merge.
	posts := []*models.Post{
		datedPost(1, 10, "Reading", "2024-03-05"),
		datedPost(2, 20, "Reading", "2024-03-08"),
	}

	buckets := BuildTimeline(posts)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Branches, 2)
	assert.Equal(t, int64(10), buckets[0].Branches[0].BranchID)
	assert.Equal(t, int64(20), buckets[0].Branches[1].BranchID)
	for _, b := range buckets[0].Branches {
		assert.Equal(t, int64(1), b.PostsCount)
	}
}

func TestBuildTimelineBranchTieBreaks(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 12, "Zebra", "2024-03-01"),
		datedPost(2, 11, "Apple", "2024-03-02"),
		datedPost(3, 13, "Apple", "2024-03-03"),
	}

	buckets := BuildTimeline(posts)
	require.Len(t, buckets, 1)
	branches := buckets[0].Branches
	require.Len(t, branches, 3)

	// Equal counts fall back to title, then id
	assert.Equal(t, int64(11), branches[0].BranchID)
	assert.Equal(t, int64(13), branches[1].BranchID)
	assert.Equal(t, "Zebra", branches[2].Title)
}

func TestBuildTimelineDetailedEmpty(t *testing.T) {
	buckets := BuildTimelineDetailed(nil)
	assert.Empty(t, buckets)
	assert.NotNil(t, buckets)
}

func TestBuildTimelineDetailedBucketsDescending(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 10, "Reading", "2023-11-02"),
		datedPost(2, 10, "Reading", "2024-01-20"),
		datedPost(3, 11, "Running", "2024-03-12"),
	}

	buckets := BuildTimelineDetailed(posts)
	require.Len(t, buckets, 3)
	assert.Equal(t, 2024, buckets[0].Year)
	assert.Equal(t, 3, buckets[0].Month)
	assert.Equal(t, 2024, buckets[1].Year)
	assert.Equal(t, 1, buckets[1].Month)
	assert.Equal(t, 2023, buckets[2].Year)
	assert.Equal(t, 11, buckets[2].Month)
}

func TestBuildTimelineDetailedPostsNewestFirst(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 10, "Reading", "2024-03-05"),
		datedPost(2, 11, "Running", "2024-03-20"),
		datedPost(3, 10, "Reading", "2024-03-12"),
	}

	buckets := BuildTimelineDetailed(posts)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Posts, 3)
	assert.Equal(t, 3, buckets[0].PostsCount)

	assert.Equal(t, int64(2), buckets[0].Posts[0].ID)
	assert.Equal(t, int64(3), buckets[0].Posts[1].ID)
	assert.Equal(t, int64(1), buckets[0].Posts[2].ID)
	assert.Equal(t, "2024-03-20", buckets[0].Posts[0].EventDate)
}

func TestBuildTimelineDetailedBranchTitlesSorted(t *testing.T) {
	posts := []*models.Post{
		datedPost(1, 12, "Zebra", "2024-03-01"),
		datedPost(2, 11, "Apple", "2024-03-02"),
		datedPost(3, 12, "Zebra", "2024-03-03"),
	}

	buckets := BuildTimelineDetailed(posts)
	require.Len(t, buckets, 1)
	assert.Equal(t, []string{"Apple", "Zebra"}, buckets[0].Branches)
}

func TestBuildTimelineDetailedCarriesBranchColor(t *testing.T) {
	post := datedPost(1, 10, "Reading", "2024-03-05")
	post.Branch = &models.Branch{ID: 10, Title: "Reading", Color: models.ColorGreen}
	post.LikesCount = 4

	buckets := BuildTimelineDetailed([]*models.Post{post})
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Posts, 1)
	assert.Equal(t, "green", buckets[0].Posts[0].BranchColor)
	assert.Equal(t, int64(4), buckets[0].Posts[0].LikesCount)
}
