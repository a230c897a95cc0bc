package handlers

import (
	"errors"
	"net/http"

	"marlang/agent"
	"marlang/cmd/api/dto"
	"marlang/cmd/api/services"
	"marlang/models"

	"github.com/gin-gonic/gin"
)

// @Summary Get agent config
// @Tags agent
// @Produce json
// @Success 200 {object} models.AgentConfig
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /admin/agent [get]
func AdminGetAgentHandler(svc *services.AgentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := svc.Get(c.Request.Context())
		writeAgent(c, cfg, err)
	}
}

// @Summary Replace agent config
// @Description Create or replace the whole agent document
// @Tags agent
// @Accept json
// @Produce json
// @Param body body models.AgentConfig true "Agent config"
// @Success 200 {object} models.AgentConfig
// @Failure 400 {object} dto.ErrorResponseDTO
// @Router /admin/agent [put]
func AdminReplaceAgentHandler(svc *services.AgentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg models.AgentConfig
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		out, err := svc.Replace(c.Request.Context(), cfg)
		writeAgent(c, out, err)
	}
}

// @Summary Patch agent config
// @Description Merge fields into the agent document. Nested objects and dotted keys update only the named fields.
// @Tags agent
// @Accept json
// @Produce json
// @Param body body object true "Partial agent config"
// @Success 200 {object} models.AgentConfig
// @Failure 400 {object} dto.ErrorResponseDTO
// @Router /admin/agent [patch]
func AdminPatchAgentHandler(svc *services.AgentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		out, err := svc.Patch(c.Request.Context(), body)
		writeAgent(c, out, err)
	}
}

// @Summary Run the agent now
// @Description Generate one post immediately. The schedule hour is ignored; enabled flag and cooldown still apply.
// @Tags agent
// @Produce json
// @Success 200 {object} dto.RunResultDTO
// @Failure 409 {object} dto.RunResultDTO "skipped (disabled, cooldown)"
// @Failure 502 {object} dto.RunResultDTO "generation failed"
// @Failure 500 {object} dto.RunResultDTO
// @Router /admin/agent/run [post]
func AdminRunAgentHandler(svc *services.AgentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Run(c.Request.Context())
		c.JSON(runStatus(out, err), out)
	}
}

func runStatus(out dto.RunResultDTO, err error) int {
	switch {
	case err != nil:
		return http.StatusInternalServerError
	case out.Success:
		return http.StatusOK
	case out.Skipped:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeAgent(c *gin.Context, cfg *models.AgentConfig, err error) {
	switch {
	case errors.Is(err, agent.ErrAgentNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "agent not found"})
	case errors.Is(err, services.ErrInvalidAgentConfig), errors.Is(err, services.ErrEmptyUpdate):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
	default:
		c.JSON(http.StatusOK, cfg)
	}
}
