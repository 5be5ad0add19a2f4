package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/router"
	"github.com/mglush/krug/backend/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// newTestServer wires the full application against an in-memory SQLite
// database, blob storage disabled.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	require.NoError(t, router.SetupRoutes(e, db, nil, testJWTSecret, zap.NewNop()))
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func signup(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()

	rec := doRequest(t, e, http.MethodPost, "/api/v1/auth/signup", "", echo.Map{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupAndSignin(t *testing.T) {
	e := newTestServer(t)

	signup(t, e, "alice")

	// Duplicate username is rejected
	rec := doRequest(t, e, http.MethodPost, "/api/v1/auth/signup", "", echo.Map{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, e, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, e, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(t, e, http.MethodGet, "/api/v1/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, e, http.MethodPost, "/api/v1/posts", "", echo.Map{"content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFollowLikeCommentNotificationFlow(t *testing.T) {
	e := newTestServer(t)
	aliceToken := signup(t, e, "alice")
	bobToken := signup(t, e, "bob")

	// Bob posts
	rec := doRequest(t, e, http.MethodPost, "/api/v1/posts", bobToken, echo.Map{"content": "hello from bob"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	decode(t, rec, &post)
	postPath := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	// Alice follows Bob; the repeat is acknowledged, not an error
	rec = doRequest(t, e, http.MethodPost, "/api/v1/users/bob/follow", aliceToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = doRequest(t, e, http.MethodPost, "/api/v1/users/bob/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Alice likes Bob's post, twice
	rec = doRequest(t, e, http.MethodPost, postPath+"/likes", aliceToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = doRequest(t, e, http.MethodPost, postPath+"/likes", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var likeResp struct {
		Post    models.Post `json:"post"`
		Created bool        `json:"created"`
	}
	decode(t, rec, &likeResp)
	assert.False(t, likeResp.Created)
	assert.Equal(t, int64(1), likeResp.Post.LikesCount)

	// Alice comments
	rec = doRequest(t, e, http.MethodPost, postPath+"/comments", aliceToken, echo.Map{"content": "nice post"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Bob has exactly one notification per distinct event, newest first
	rec = doRequest(t, e, http.MethodGet, "/api/v1/notifications/unread-count", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var countResp struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &countResp)
	assert.Equal(t, int64(3), countResp.Count)

	rec = doRequest(t, e, http.MethodGet, "/api/v1/notifications", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inboxResp struct {
		Notifications []struct {
			Kind    models.NotificationKind `json:"kind"`
			IsRead  bool                    `json:"is_read"`
			Message string                  `json:"message"`
			Sender  models.UserCompact      `json:"sender"`
		} `json:"notifications"`
	}
	decode(t, rec, &inboxResp)
	require.Len(t, inboxResp.Notifications, 3)
	assert.Equal(t, models.NotificationCommentedOnPost, inboxResp.Notifications[0].Kind)
	assert.Equal(t, models.NotificationLikedPost, inboxResp.Notifications[1].Kind)
	assert.Equal(t, models.NotificationStartedFollowing, inboxResp.Notifications[2].Kind)
	for _, n := range inboxResp.Notifications {
		assert.False(t, n.IsRead)
		assert.Equal(t, "alice", n.Sender.Username)
		assert.NotEmpty(t, n.Message)
	}

	// Listing marked everything read
	rec = doRequest(t, e, http.MethodGet, "/api/v1/notifications/unread-count", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &countResp)
	assert.Equal(t, int64(0), countResp.Count)

	// Alice's feed carries Bob's post, enriched
	rec = doRequest(t, e, http.MethodGet, "/api/v1/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feedResp struct {
		Posts []struct {
			models.Post
			Author  models.UserCompact `json:"author"`
			IsLiked bool               `json:"is_liked"`
		} `json:"posts"`
	}
	decode(t, rec, &feedResp)
	require.Len(t, feedResp.Posts, 1)
	assert.Equal(t, "hello from bob", feedResp.Posts[0].Content)
	assert.Equal(t, "bob", feedResp.Posts[0].Author.Username)
	assert.True(t, feedResp.Posts[0].IsLiked)
}

func TestPostOwnershipOverHTTP(t *testing.T) {
	e := newTestServer(t)
	aliceToken := signup(t, e, "alice")
	bobToken := signup(t, e, "bob")

	rec := doRequest(t, e, http.MethodPost, "/api/v1/posts", bobToken, echo.Map{"content": "bob's post"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var post models.Post
	decode(t, rec, &post)
	postPath := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	// Foreign author gets forbidden, not 404
	rec = doRequest(t, e, http.MethodPut, postPath, aliceToken, echo.Map{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, e, http.MethodDelete, postPath, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, e, http.MethodPut, "/api/v1/posts/9999", bobToken, echo.Map{"content": "nothing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, e, http.MethodDelete, postPath, bobToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, e, http.MethodGet, postPath, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentAddressingOverHTTP(t *testing.T) {
	e := newTestServer(t)
	aliceToken := signup(t, e, "alice")
	bobToken := signup(t, e, "bob")

	rec := doRequest(t, e, http.MethodPost, "/api/v1/posts", bobToken, echo.Map{"content": "post a"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var postA models.Post
	decode(t, rec, &postA)

	rec = doRequest(t, e, http.MethodPost, "/api/v1/posts", bobToken, echo.Map{"content": "post b"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var postB models.Post
	decode(t, rec, &postB)

	rec = doRequest(t, e, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postA.ID), aliceToken, echo.Map{"content": "on post a"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var comment models.Comment
	decode(t, rec, &comment)

	// The same comment under the wrong post is rejected
	rec = doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments/%d", postB.ID, comment.ID), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments/%d", postA.ID, comment.ID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The post's author may moderate the comment away
	rec = doRequest(t, e, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d/comments/%d", postA.ID, comment.ID), bobToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
