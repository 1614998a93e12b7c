package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/models"
)

func newTestPosts() (*PostService, *mockPostRepo) {
	users := newMockUserRepo(
		&models.User{ID: 1, Username: "alice", Email: "alice@example.com"},
		&models.User{ID: 2, Username: "bob", Email: "bob@example.com"},
	)
	posts := newMockPostRepo()
	return NewPostService(posts, users), posts
}

func TestPostService_CreateSanitizes(t *testing.T) {
	svc, _ := newTestPosts()

	post, err := svc.Create(context.Background(), 1, "<b>Hello</b>", `<script>alert(1)</script>World`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Content)
	assert.Equal(t, int64(1), post.UserID)

	_, err = svc.Create(context.Background(), 1, "<i></i>", "content")
	assert.ErrorIs(t, err, ErrEmptyPost)
}

func TestPostService_OnlyAuthorCanModify(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	post, err := svc.Create(ctx, 1, "Title", "Content")
	require.NoError(t, err)

	_, err = svc.Update(ctx, 2, post.ID, "Hacked", "Hacked")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, 2, post.ID), ErrForbidden)

	updated, err := svc.Update(ctx, 1, post.ID, "New title", "New content")
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)

	require.NoError(t, svc.Delete(ctx, 1, post.ID))
	_, err = svc.Get(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_MissingPost(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	_, err := svc.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = svc.Update(ctx, 1, 99, "t", "c")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 1, 99), ErrPostNotFound)
}

func TestPostService_Pagination(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		_, err := svc.Create(ctx, 1, fmt.Sprintf("Post %d", i), "content")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, 2, "Bob's post", "content")
	require.NoError(t, err)

	first, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Len(t, first.Items, PostsPerPage)
	assert.Equal(t, int64(8), first.Total)
	assert.Equal(t, "Bob's post", first.Items[0].Title, "новые посты первыми")
	assert.True(t, first.HasNext)

	second, err := svc.ListByUser(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.Equal(t, int64(7), second.Total)
	assert.False(t, second.HasNext)
	assert.Equal(t, "Post 2", second.Items[0].Title)

	past, err := svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.NotNil(t, past.Items)

	_, err = svc.ListByUser(ctx, "nobody", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
