package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBranchCanViewPublic(t *testing.T) {
	branch := &Branch{ID: 1, UserID: 10, IsPrivate: false}

	assert.True(t, branch.CanView(nil))
	assert.True(t, branch.CanView(&Viewer{ID: 99}))
	assert.True(t, branch.CanView(&Viewer{ID: 10}))
}

func TestBranchCanViewPrivate(t *testing.T) {
	branch := &Branch{ID: 1, UserID: 10, IsPrivate: true}

	assert.False(t, branch.CanView(nil))
	assert.False(t, branch.CanView(&Viewer{ID: 99}))
	assert.True(t, branch.CanView(&Viewer{ID: 10}))
	assert.True(t, branch.CanView(&Viewer{ID: 99, IsStaff: true}))
}

func TestPostCanViewPublished(t *testing.T) {
	post := &Post{ID: 1, UserID: 10, IsDraft: false, Branch: &Branch{ID: 2, UserID: 10, IsPrivate: false}}

	assert.True(t, post.CanView(nil))
	assert.True(t, post.CanView(&Viewer{ID: 99}))
}

func TestPostCanViewInheritsBranchPrivacy(t *testing.T) {
	post := &Post{ID: 1, UserID: 10, IsDraft: false, Branch: &Branch{ID: 2, UserID: 10, IsPrivate: true}}

	assert.False(t, post.CanView(nil))
	assert.False(t, post.CanView(&Viewer{ID: 99}))
	assert.True(t, post.CanView(&Viewer{ID: 10}))
	assert.True(t, post.CanView(&Viewer{ID: 99, IsStaff: true}))
}

func TestPostCanViewDraft(t *testing.T) {
	// Draft rule applies even when the branch itself is public
	post := &Post{ID: 1, UserID: 10, IsDraft: true, Branch: &Branch{ID: 2, UserID: 10, IsPrivate: false}}

	assert.False(t, post.CanView(nil))
	assert.False(t, post.CanView(&Viewer{ID: 99}))
	assert.True(t, post.CanView(&Viewer{ID: 10}))
	assert.True(t, post.CanView(&Viewer{ID: 99, IsStaff: true}))
}

func TestUserViewer(t *testing.T) {
	var nobody *User
	assert.Nil(t, nobody.Viewer())

	viewer := (&User{ID: 7, IsStaff: true}).Viewer()
	assert.Equal(t, int64(7), viewer.ID)
	assert.True(t, viewer.IsStaff)
}

func TestBranchColorIsValid(t *testing.T) {
	for _, color := range BranchColors {
		assert.True(t, color.IsValid())
	}
	assert.False(t, BranchColor("magenta").IsValid())
	assert.False(t, BranchColor("").IsValid())
}

func TestPostTypeIsValid(t *testing.T) {
	for _, pt := range PostTypes {
		assert.True(t, pt.IsValid())
	}
	assert.False(t, PostType("poll").IsValid())
	assert.False(t, PostType("").IsValid())
}
