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

func TestIndexHidesInvisiblePosts(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	pubCat := createCategory(t, db, "go", true)
	hiddenCat := createCategory(t, db, "secret", false)
	past := time.Now().Add(-time.Hour)

	createPost(t, db, alice, &pubCat, past, true, "visible")
	createPost(t, db, alice, &pubCat, past, false, "draft")
	createPost(t, db, alice, &pubCat, time.Now().Add(24*time.Hour), true, "scheduled")
	createPost(t, db, alice, &hiddenCat, past, true, "hidden-category")
	createPost(t, db, alice, nil, past, true, "no-category")

	w := perform(r, "GET", "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"visible"}, itemTitles(t, decode(t, w)))
}

func TestIndexEmptyPage(t *testing.T) {
	_, r := newTestEnv(t)

	w := perform(r, "GET", "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	// An empty page still serializes as a list, not null.
	assert.Contains(t, w.Body.String(), `"items":[]`)
	assert.Len(t, items(t, decode(t, w)), 0)
}

func TestIndexPagination(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)
	base := time.Now().Add(-100 * time.Hour)
	for i := 0; i < 15; i++ {
		createPost(t, db, alice, &cat, base.Add(time.Duration(i)*time.Hour), true, fmt.Sprintf("post-%02d", i))
	}

	w := perform(r, "GET", "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Len(t, items(t, env), 10)
	// Newest publish date leads.
	assert.Equal(t, "post-14", itemTitles(t, env)[0])

	pg, ok := env.Data["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(15), pg["total"])
	assert.Equal(t, float64(2), pg["total_pages"])

	w = perform(r, "GET", "/?page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, items(t, decode(t, w)), 5)
}

func TestPostDetailVisibility(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	cat := createCategory(t, db, "go", true)
	draft := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), false, "draft")
	path := fmt.Sprintf("/posts/%d/", draft.ID)

	// Owner sees their own draft.
	w := perform(r, "GET", path, nil, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, w.Code)
	post := decode(t, w).Data["post"].(map[string]interface{})
	assert.Equal(t, "draft", post["title"])

	// Hidden posts are plain 404s for everyone else.
	w = perform(r, "GET", path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = perform(r, "GET", path, nil, tokenFor(t, bob))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetailComments(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "visible")
	first := createComment(t, db, post, alice, "first")
	second := createComment(t, db, post, alice, "second")

	w := perform(r, "GET", fmt.Sprintf("/posts/%d/", post.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)

	comments := env.Data["comments"].([]interface{})
	require.Len(t, comments, 2)
	// Oldest first.
	assert.Equal(t, first.Text, comments[0].(map[string]interface{})["text"])
	assert.Equal(t, second.Text, comments[1].(map[string]interface{})["text"])

	postData := env.Data["post"].(map[string]interface{})
	assert.Equal(t, float64(2), postData["comment_count"])
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)

	w := perform(r, "POST", "/posts/create/", map[string]interface{}{
		"title":       "hello",
		"text":        "world",
		"category_id": cat.ID,
	}, tokenFor(t, alice))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, db.Where("title = ?", "hello").First(&post).Error)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.True(t, post.IsPublished)
	assert.False(t, post.PubDate.IsZero())
}

func TestCreatePostRequiresAuth(t *testing.T) {
	_, r := newTestEnv(t)
	w := perform(r, "POST", "/posts/create/", map[string]interface{}{
		"title": "hello", "text": "world",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")

	w := perform(r, "POST", "/posts/create/", map[string]interface{}{
		"title":       "hello",
		"text":        "world",
		"category_id": 999,
	}, tokenFor(t, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditForeignPostRedirectsToDetail(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "original")

	w := perform(r, "POST", fmt.Sprintf("/posts/%d/edit/", post.ID), map[string]interface{}{
		"title": "hijacked", "text": "nope",
	}, tokenFor(t, bob))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, "original", got.Title)
}

func TestOwnerEditUpdatesPost(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "original")

	w := perform(r, "POST", fmt.Sprintf("/posts/%d/edit/", post.ID), map[string]interface{}{
		"title":       "updated",
		"text":        "new text",
		"category_id": cat.ID,
	}, tokenFor(t, alice))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, "updated", got.Title)
}

func TestDeletePost(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	cat := createCategory(t, db, "go", true)
	post := createPost(t, db, alice, &cat, time.Now().Add(-time.Hour), true, "doomed")
	path := fmt.Sprintf("/posts/%d/delete/", post.ID)

	// A non-owner bounces to the detail page and the post survives.
	w := perform(r, "POST", path, nil, tokenFor(t, bob))
	require.Equal(t, http.StatusFound, w.Code)
	var count int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w = perform(r, "POST", path, nil, tokenFor(t, alice))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteMissingPostIs404(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	w := perform(r, "POST", "/posts/12345/delete/", nil, tokenFor(t, alice))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryPosts(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	goCat := createCategory(t, db, "go", true)
	pyCat := createCategory(t, db, "python", true)
	hidden := createCategory(t, db, "secret", false)
	past := time.Now().Add(-time.Hour)

	createPost(t, db, alice, &goCat, past, true, "in-go")
	createPost(t, db, alice, &pyCat, past, true, "in-python")
	createPost(t, db, alice, &hidden, past, true, "in-secret")

	w := perform(r, "GET", "/category/go/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"in-go"}, itemTitles(t, decode(t, w)))

	// Unpublished and unknown categories are indistinguishable.
	w = perform(r, "GET", "/category/secret/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = perform(r, "GET", "/category/nope/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateFormListsPublishedChoices(t *testing.T) {
	db, r := newTestEnv(t)
	alice := createUser(t, db, "alice")
	createCategory(t, db, "go", true)
	createCategory(t, db, "secret", false)
	require.NoError(t, db.Create(&models.Location{Name: "Moscow", IsPublished: true}).Error)
	require.NoError(t, db.Create(&models.Location{Name: "Atlantis", IsPublished: false}).Error)

	w := perform(r, "GET", "/posts/create/", nil, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Len(t, env.Data["categories"].([]interface{}), 1)
	assert.Len(t, env.Data["locations"].([]interface{}), 1)
}
