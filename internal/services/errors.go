package services

import "errors"

// Error taxonomy of the interaction engine. Handlers translate these to
// HTTP statuses; anything else that escapes a service is a server error.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the actor is authenticated but not
	// allowed to perform the mutation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrNotFollowing is returned by Unfollow when no edge exists.
	ErrNotFollowing = errors.New("not following this user")

	// ErrLikeNotFound is returned by Unlike when the actor never liked
	// the post.
	ErrLikeNotFound = errors.New("like not found")

	// ErrCommentMismatch is returned when a comment is addressed under
	// a post it does not belong to.
	ErrCommentMismatch = errors.New("comment does not belong to this post")
)
