package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blog/backend/internal/domain"
	"github.com/iamasit07/blog/backend/internal/service/post"
	"github.com/iamasit07/blog/backend/internal/transport/http/middleware"
)

type PostHandler struct {
	Posts *post.Service
}

func NewPostHandler(svc *post.Service) *PostHandler {
	return &PostHandler{Posts: svc}
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Search(c *gin.Context) {
	posts, err := h.Posts.Search(c.Request.Context(), c.Query("title"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	p, err := h.Posts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Related(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	posts, err := h.Posts.Related(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}

	var req struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		Thumbnail string `json:"thumbnail"`
		Desc      string `json:"desc"`
	}
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.Posts.Create(c.Request.Context(),
		post.Author{Email: claims.Email, Username: claims.Username},
		post.CreateInput{Title: req.Title, Category: req.Category, Thumbnail: req.Thumbnail, Desc: req.Desc},
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) Delete(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := h.Posts.Delete(c.Request.Context(), post.Author{Email: claims.Email, Username: claims.Username}, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// postID parses :id. Anything that is not a positive integer cannot name a
// post, so it is reported as 404.
func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, domain.ErrNotFound)
		return 0, false
	}
	return id, true
}
