package model

import (
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk full")

	storage := NewStorageError(cause, "write content %q", "hello-world")
	wrapped := errors.Wrap(storage, "create post")

	require.True(t, IsKind(wrapped, KindStorage))
	require.False(t, IsKind(wrapped, KindNotFound))
	require.True(t, errors.Is(wrapped, cause))
	require.Contains(t, wrapped.Error(), "disk full")

	typed, ok := AsError(wrapped)
	require.True(t, ok)
	require.False(t, typed.Public())

	require.True(t, NewNotFoundError("post %q not found", "x").Public())
	require.False(t, IsKind(nil, KindStorage))
	require.False(t, IsKind(errors.New("plain"), KindStorage))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("invalid blog data", map[string]string{
		"title":   "must be at least 3 characters",
		"excerpt": "must be at least 10 characters",
	})

	require.Equal(t,
		"invalid blog data (excerpt: must be at least 10 characters; title: must be at least 3 characters)",
		err.Error())
	require.True(t, err.Public())
}

func TestRole(t *testing.T) {
	require.True(t, RoleAdmin.AtLeast(RoleEditor))
	require.True(t, RoleEditor.AtLeast(RoleEditor))
	require.False(t, RoleUser.AtLeast(RoleEditor))
	require.False(t, Role("root").AtLeast(RoleUser))
	require.False(t, RoleAdmin.AtLeast(Role("")))

	var nilUser *User
	require.Equal(t, RoleUser, nilUser.EffectiveRole())
	require.Equal(t, RoleUser, (&User{Role: "legacy"}).EffectiveRole())
	require.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestCommentStatus(t *testing.T) {
	require.Equal(t, CommentStatusPending, (&Comment{}).Status())
	require.Equal(t, CommentStatusApproved, (&Comment{Approved: true}).Status())
}
