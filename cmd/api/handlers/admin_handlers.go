package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"marlang/cmd/api/dto"
	"marlang/cmd/api/middleware"
	"marlang/cmd/api/services"

	"github.com/gin-gonic/gin"
)

// @Summary List posts for admin
// @Description List posts of every status with pagination and optional status/tag filtering
// @Tags admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param status query string false "draft | published"
// @Param tag query string false "Filter by tag"
// @Success 200 {object} dto.PaginationAdminPostDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /admin/posts [get]
func AdminListPostsHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		resp, err := svc.ListPosts(c.Request.Context(), services.AdminListPostsInput{
			Page:     page,
			PageSize: pageSize,
			Status:   c.Query("status"),
			Tag:      c.Query("tag"),
		})
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary Update a post
// @Description Update selected fields of a post
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param body body dto.AdminUpdatePostRequestDTO true "Fields to update"
// @Success 200 {object} dto.AdminPostDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /admin/posts/{id} [put]
func AdminUpdatePostHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AdminUpdatePostRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		out, err := svc.UpdatePost(c.Request.Context(), c.Param("id"), req)
		switch {
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrEmptyUpdate):
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
		case errors.Is(err, services.ErrPostNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
		default:
			c.JSON(http.StatusOK, out)
		}
	}
}

// @Summary Delete a post
// @Description Delete a post by ID
// @Tags admin
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /admin/posts/{id} [delete]
func AdminDeletePostHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.DeletePost(c.Request.Context(), c.Param("id"))
		if errors.Is(err, services.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "post deleted successfully"})
	}
}

// @Summary List admins
// @Tags admin
// @Produce json
// @Success 200 {array} dto.AdminDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /admin/admins [get]
func AdminListAdminsHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListAdmins(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Register an admin
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.AddAdminRequestDTO true "Admin to add"
// @Success 201 {object} dto.AdminDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /admin/admins [post]
func AdminAddAdminHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AddAdminRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		out, err := svc.AddAdmin(c.Request.Context(), req, c.GetString(middleware.ContextKeyUserCode))
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

// @Summary Remove an admin
// @Tags admin
// @Produce json
// @Param uid path string true "Admin uid"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 500 {object} dto.ErrorResponseDTO
// @Router /admin/admins/{uid} [delete]
func AdminRemoveAdminHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.RemoveAdmin(c.Request.Context(), c.Param("uid"), c.GetString(middleware.ContextKeyUserCode))
		switch {
		case errors.Is(err, services.ErrSelfRemoval):
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
		case errors.Is(err, services.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
		default:
			c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "admin removed successfully"})
		}
	}
}
