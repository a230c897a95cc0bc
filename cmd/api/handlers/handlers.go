package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marlang/cmd/api/dto"
	"marlang/cmd/api/services"
	"marlang/config"
	"marlang/storage"
)

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List published posts, newest first, with optional tag filter
// @Tags         posts
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Param        tag        query  string  false  "Tag (case-insensitive)"
// @Produce      json
// @Success      200  {object}  dto.PaginationPostDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /posts [get]
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListPostsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Tag = strings.TrimSpace(c.Query("tag"))

		page, err := svc.List(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetPostHandler godoc
// @Summary      Get post by id
// @Description  Get a single published post
// @Tags         posts
// @Param        id   path   string  true  "Post ID"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /posts/{id} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetByID(c.Request.Context(), c.Param("id"))
		writePost(c, post, err)
	}
}

// GetPostBySlugHandler godoc
// @Summary      Get post by slug
// @Tags         posts
// @Param        slug  path   string  true  "URL slug"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /posts/slug/{slug} [get]
func GetPostBySlugHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		writePost(c, post, err)
	}
}

func writePost(c *gin.Context, post *dto.PostDTO, err error) {
	if errors.Is(err, services.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetImageHandler godoc
// @Summary      Get generated image
// @Description  Stream a stored thumbnail image
// @Tags         images
// @Param        key  path  string  true  "Object key"
// @Produce      image/png
// @Success      200
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /images/{key} [get]
func GetImageHandler(images storage.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		obj, err := images.Open(c.Request.Context(), key)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "not found"})
			return
		}
		if err != nil {
			config.Logger.Errorf("image open failed key=%s: %v", key, err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "image unavailable"})
			return
		}
		defer obj.Body.Close()

		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Header("Content-Type", obj.ContentType)
		if obj.Size > 0 {
			c.Header("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, obj.Body); err != nil {
			config.Logger.Warnf("image stream interrupted key=%s: %v", key, err)
		}
	}
}
