package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/module/repository"
	"researchequals-backend/internal/shared/response"
)

// ModuleHandler serves the public module read endpoints.
type ModuleHandler struct {
	repo repository.ModuleRepository
}

func NewModuleHandler(repo repository.ModuleRepository) *ModuleHandler {
	return &ModuleHandler{repo: repo}
}

// GetBySuffix handles GET /modules/:suffix — the resolve target that
// registered identifiers point back to. Only published modules resolve.
func (h *ModuleHandler) GetBySuffix(c *gin.Context) {
	suffix := c.Param("suffix")
	if suffix == "" {
		response.BadRequest(c, "suffix is required")
		return
	}

	mod, err := h.repo.GetBySuffix(c.Request.Context(), suffix)
	if err != nil {
		if errors.Is(err, model.ErrModuleNotFound) {
			response.NotFound(c, "module not found")
			return
		}
		response.InternalServerError(c, "failed to load module")
		return
	}

	response.Success(c, http.StatusOK, mod)
}
