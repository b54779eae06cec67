package dto

// TimelineBranchCount is the per-branch share of a timeline bucket. Branches
// are identified by id; the title is carried for display only, so two
// branches that happen to share a title stay distinct.
type TimelineBranchCount struct {
	BranchID   int64  `json:"branchId"`
	Title      string `json:"title"`
	PostsCount int64  `json:"postsCount"`
}

// TimelineBucket is one (year, month) group of a user's timeline
type TimelineBucket struct {
	Year       int                   `json:"year"`
	Month      int                   `json:"month"`
	PostsCount int64                 `json:"postsCount"`
	Branches   []TimelineBranchCount `json:"branches"`
}

// TimelinePostEntry is a single post inside a detailed timeline bucket
type TimelinePostEntry struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Branch      string `json:"branch"`
	BranchColor string `json:"branchColor"`
	EventDate   string `json:"eventDate" example:"2024-03-15"`
	LikesCount  int64  `json:"likesCount"`
}

// DetailedTimelineBucket is one (year, month) group of the detailed timeline,
// carrying the individual post entries sorted by event date descending
type DetailedTimelineBucket struct {
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	PostsCount int                 `json:"postsCount"`
	Branches   []string            `json:"branches"`
	Posts      []TimelinePostEntry `json:"posts"`
}
