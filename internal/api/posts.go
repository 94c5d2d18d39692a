package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/models"
)

const defaultPageSize = 50

// listPosts returns captured posts, optionally filtered by account,
// kind, and media flag
func (r *Router) listPosts(c *gin.Context) {
	filter := db.PostFilter{
		Limit:  queryInt(c, "limit", defaultPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	if v := c.Query("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid account_id")
			return
		}
		filter.AccountID = id
	}
	if v := c.Query("kind"); v != "" {
		kind := models.PostKind(v)
		switch kind {
		case models.PostKindOriginal, models.PostKindRepost, models.PostKindQuote:
			filter.Kind = kind
		default:
			respondError(c, http.StatusBadRequest, "invalid kind")
			return
		}
	}
	if v := c.Query("has_media"); v != "" {
		hasMedia, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid has_media")
			return
		}
		filter.HasMedia = &hasMedia
	}

	postRepo := db.NewPostRepository(r.repo)
	posts, err := postRepo.List(c.Request.Context(), filter)
	if err != nil {
		r.logger.Error("Failed to list posts", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]gin.H, 0, len(posts))
	for i := range posts {
		out = append(out, postJSON(&posts[i]))
	}
	c.JSON(http.StatusOK, out)
}

// getPost returns one captured post
func (r *Router) getPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	postRepo := db.NewPostRepository(r.repo)
	post, err := postRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		r.logger.Error("Failed to load post", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if post == nil {
		respondError(c, http.StatusNotFound, "post not found")
		return
	}

	c.JSON(http.StatusOK, postJSON(post))
}

// listPostReplies returns all replies under one post
func (r *Router) listPostReplies(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	postRepo := db.NewPostRepository(r.repo)
	post, err := postRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		r.logger.Error("Failed to load post", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if post == nil {
		respondError(c, http.StatusNotFound, "post not found")
		return
	}

	replyRepo := db.NewReplyRepository(r.repo)
	replies, err := replyRepo.ListByPost(c.Request.Context(), post.ID)
	if err != nil {
		r.logger.Error("Failed to list replies", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]gin.H, 0, len(replies))
	for i := range replies {
		out = append(out, replyJSON(&replies[i]))
	}
	c.JSON(http.StatusOK, out)
}

// queryInt parses an integer query parameter with a default
func queryInt(c *gin.Context, name string, defaultValue int) int {
	v := c.Query(name)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
