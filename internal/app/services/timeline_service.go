package services

import (
	"context"
	"sort"
	"time"

	appAuth "github.com/kmapteam/knowledgemap/internal/app/auth"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

// TimelineService defines the interface for timeline aggregation
type TimelineService interface {
	GetTimeline(ctx context.Context, viewer *models.Viewer, username string) ([]dto.TimelineBucket, error)
	GetTimelineDetailed(ctx context.Context, viewer *models.Viewer, username string) ([]dto.DetailedTimelineBucket, error)
}

// timelineServiceImpl implements the TimelineService interface
type timelineServiceImpl struct {
	userRepo *repositories.UserRepository
	postRepo *repositories.PostRepository
	authz    *appAuth.AuthorizationService
}

// NewTimelineService creates a new timeline service instance
func NewTimelineService(userRepo *repositories.UserRepository, postRepo *repositories.PostRepository, authz *appAuth.AuthorizationService) TimelineService {
	return &timelineServiceImpl{
		userRepo: userRepo,
		postRepo: postRepo,
		authz:    authz,
	}
}

// GetTimeline returns a user's aggregated timeline: per-month post counts
// with a per-branch breakdown, oldest month first. The aggregation covers
// only published posts in public branches, the owner included; drafts and
// private material never count here. A private profile is visible only to
// its owner and staff.
func (s *timelineServiceImpl) GetTimeline(ctx context.Context, viewer *models.Viewer, username string) ([]dto.TimelineBucket, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanViewProfileTimeline(viewer, target) {
		return nil, apperrors.ErrProfilePrivate
	}

	posts, err := s.postRepo.ListForTimeline(ctx, target.ID, false)
	if err != nil {
		return nil, err
	}

	return BuildTimeline(posts), nil
}

// GetTimelineDetailed returns a user's timeline with the individual posts
// inside each month, newest month first. The owner and staff additionally
// see drafts and private-branch posts; everyone else gets the published
// public slice.
func (s *timelineServiceImpl) GetTimelineDetailed(ctx context.Context, viewer *models.Viewer, username string) ([]dto.DetailedTimelineBucket, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	includeHidden := viewer != nil && (viewer.ID == target.ID || viewer.IsStaff)

	posts, err := s.postRepo.ListForTimeline(ctx, target.ID, includeHidden)
	if err != nil {
		return nil, err
	}

	return BuildTimelineDetailed(posts), nil
}

type bucketKey struct {
	year  int
	month int
}

func splitEventDate(t time.Time) bucketKey {
	return bucketKey{year: t.Year(), month: int(t.Month())}
}

// BuildTimeline groups posts into (year, month) buckets with per-branch
// counts, ascending by year then month. Branches are keyed by identity, so
// two branches sharing a title produce two entries. Pure, the caller is
// responsible for visibility filtering.
func BuildTimeline(posts []*models.Post) []dto.TimelineBucket {
	type branchAgg struct {
		title string
		count int64
	}
	buckets := map[bucketKey]map[int64]*branchAgg{}
	totals := map[bucketKey]int64{}

	for _, post := range posts {
		key := splitEventDate(post.EventDate)
		if buckets[key] == nil {
			buckets[key] = map[int64]*branchAgg{}
		}
		totals[key]++

		agg := buckets[key][post.BranchID]
		if agg == nil {
			agg = &branchAgg{title: post.BranchTitle}
			buckets[key][post.BranchID] = agg
		}
		agg.count++
	}

	keys := make([]bucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	result := make([]dto.TimelineBucket, 0, len(keys))
	for _, key := range keys {
		branches := make([]dto.TimelineBranchCount, 0, len(buckets[key]))
		for branchID, agg := range buckets[key] {
			branches = append(branches, dto.TimelineBranchCount{
				BranchID:   branchID,
				Title:      agg.title,
				PostsCount: agg.count,
			})
		}
		// Stable output: most posts first, then title, then id
		sort.Slice(branches, func(i, j int) bool {
			if branches[i].PostsCount != branches[j].PostsCount {
				return branches[i].PostsCount > branches[j].PostsCount
			}
			if branches[i].Title != branches[j].Title {
				return branches[i].Title < branches[j].Title
			}
			return branches[i].BranchID < branches[j].BranchID
		})

		result = append(result, dto.TimelineBucket{
			Year:       key.year,
			Month:      key.month,
			PostsCount: totals[key],
			Branches:   branches,
		})
	}

	return result
}

// BuildTimelineDetailed groups posts into (year, month) buckets carrying the
// individual entries, buckets descending by year then month and posts
// descending by event date within each bucket. Pure, the caller is
// responsible for visibility filtering.
func BuildTimelineDetailed(posts []*models.Post) []dto.DetailedTimelineBucket {
	type detail struct {
		posts    []dto.TimelinePostEntry
		dates    []time.Time
		branches []string
		seen     map[string]bool
	}
	buckets := map[bucketKey]*detail{}

	for _, post := range posts {
		key := splitEventDate(post.EventDate)
		d := buckets[key]
		if d == nil {
			d = &detail{seen: map[string]bool{}}
			buckets[key] = d
		}

		entry := dto.TimelinePostEntry{
			ID:         post.ID,
			Title:      post.Title,
			Branch:     post.BranchTitle,
			EventDate:  post.EventDate.Format(time.DateOnly),
			LikesCount: post.LikesCount,
		}
		if post.Branch != nil {
			entry.BranchColor = string(post.Branch.Color)
		}
		d.posts = append(d.posts, entry)
		d.dates = append(d.dates, post.EventDate)

		if !d.seen[post.BranchTitle] {
			d.seen[post.BranchTitle] = true
			d.branches = append(d.branches, post.BranchTitle)
		}
	}

	keys := make([]bucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].month > keys[j].month
	})

	result := make([]dto.DetailedTimelineBucket, 0, len(keys))
	for _, key := range keys {
		d := buckets[key]

		// Sort entries and their dates together, newest first
		order := make([]int, len(d.posts))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return d.dates[order[i]].After(d.dates[order[j]])
		})
		sorted := make([]dto.TimelinePostEntry, len(order))
		for i, idx := range order {
			sorted[i] = d.posts[idx]
		}

		sort.Strings(d.branches)

		result = append(result, dto.DetailedTimelineBucket{
			Year:       key.year,
			Month:      key.month,
			PostsCount: len(sorted),
			Branches:   d.branches,
			Posts:      sorted,
		})
	}

	return result
}
