package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/models"
)

func TestCreateComment(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "visible")

	w := perform(r, "POST", fmt.Sprintf("/posts/%d/comment/", post.ID), map[string]interface{}{
		"text": "nice post",
	}, tokenFor(t, bob))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var comment models.Comment
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&comment).Error)
	assert.Equal(t, bob.ID, comment.AuthorID)
	assert.Equal(t, "nice post", comment.Text)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	w := perform(r, "POST", "/posts/777/comment/", map[string]interface{}{
		"text": "into the void",
	}, tokenFor(t, alice))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCommentRejectsEmptyText(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "visible")

	w := perform(r, "POST", fmt.Sprintf("/posts/%d/comment/", post.ID), map[string]interface{}{
		"text": "   ",
	}, tokenFor(t, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForeignCommentIsNotFound(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "visible")
	comment := createComment(t, db, post, alice, "mine")

	editPath := fmt.Sprintf("/posts/%d/comment/%d/edit/", post.ID, comment.ID)
	deletePath := fmt.Sprintf("/posts/%d/comment/%d/delete/", post.ID, comment.ID)

	w := perform(r, "GET", editPath, nil, tokenFor(t, bob))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, "POST", editPath, map[string]interface{}{"text": "hijacked"}, tokenFor(t, bob))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, "POST", deletePath, nil, tokenFor(t, bob))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var got models.Comment
	require.NoError(t, db.First(&got, comment.ID).Error)
	assert.Equal(t, "mine", got.Text)
}

func TestOwnCommentUpdateAndDelete(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "visible")
	comment := createComment(t, db, post, alice, "draft thought")

	w := perform(r, "GET", fmt.Sprintf("/posts/%d/comment/%d/edit/", post.ID, comment.ID), nil, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, "POST", fmt.Sprintf("/posts/%d/comment/%d/edit/", post.ID, comment.ID), map[string]interface{}{
		"text": "final thought",
	}, tokenFor(t, alice))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var got models.Comment
	require.NoError(t, db.First(&got, comment.ID).Error)
	assert.Equal(t, "final thought", got.Text)

	w = perform(r, "POST", fmt.Sprintf("/posts/%d/comment/%d/delete/", post.ID, comment.ID), nil, tokenFor(t, alice))
	require.Equal(t, http.StatusSeeOther, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCommentSanitizesMarkup(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "visible")

	w := perform(r, "POST", fmt.Sprintf("/posts/%d/comment/", post.ID), map[string]interface{}{
		"text": `hello <script>alert("x")</script>world`,
	}, tokenFor(t, alice))
	require.Equal(t, http.StatusSeeOther, w.Code)

	var comment models.Comment
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&comment).Error)
	assert.NotContains(t, comment.Text, "<script>")
	assert.Contains(t, comment.Text, "hello")
}
