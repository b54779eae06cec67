package models

// BranchColor defines the display color of a branch on the timeline
type BranchColor string

const (
	ColorBlue   BranchColor = "blue"
	ColorGreen  BranchColor = "green"
	ColorRed    BranchColor = "red"
	ColorYellow BranchColor = "yellow"
	ColorPurple BranchColor = "purple"
	ColorPink   BranchColor = "pink"
	ColorIndigo BranchColor = "indigo"
	ColorGray   BranchColor = "gray"
)

// BranchColors lists every valid branch color.
var BranchColors = []BranchColor{
	ColorBlue, ColorGreen, ColorRed, ColorYellow,
	ColorPurple, ColorPink, ColorIndigo, ColorGray,
}

// IsValid reports whether c is one of the known branch colors.
func (c BranchColor) IsValid() bool {
	for _, known := range BranchColors {
		if c == known {
			return true
		}
	}
	return false
}

// PostType defines the kind of content a post carries
type PostType string

const (
	PostTypeText        PostType = "text"
	PostTypeLink        PostType = "link"
	PostTypeImage       PostType = "image"
	PostTypeVideo       PostType = "video"
	PostTypeCode        PostType = "code"
	PostTypeAchievement PostType = "achievement"
	PostTypeMilestone   PostType = "milestone"
)

// PostTypes lists every valid post type.
var PostTypes = []PostType{
	PostTypeText, PostTypeLink, PostTypeImage, PostTypeVideo,
	PostTypeCode, PostTypeAchievement, PostTypeMilestone,
}

// IsValid reports whether t is one of the known post types.
func (t PostType) IsValid() bool {
	for _, known := range PostTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Viewer identifies who is looking at an entity. A nil *Viewer means the
// request is anonymous.
type Viewer struct {
	ID      int64
	IsStaff bool
}

// Viewable is the capability shared by entities whose visibility depends on
// who is asking. Each entity implements its own rule; callers never probe for
// flags like is_draft or is_private directly.
type Viewable interface {
	CanView(viewer *Viewer) bool
}
