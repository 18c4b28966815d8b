package v1

import (
	"net/http"

	"go-recruiter-backend/internal/delivery/http/response"
	"go-recruiter-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	applicationUC domain.ApplicationUsecase
	exportUC      domain.ExportUsecase
}

// NewAdminHandler registers reviewer routes. The group must already carry
// AdminOnly.
func NewAdminHandler(admin *gin.RouterGroup, applicationUC domain.ApplicationUsecase, exportUC domain.ExportUsecase) {
	handler := &AdminHandler{applicationUC: applicationUC, exportUC: exportUC}

	admin.PATCH("/applications/:id/status", handler.ReviewApplication)
	admin.GET("/careers/:id/applications/export", handler.ExportApplications)
}

type ReviewRequest struct {
	Status domain.ApplicationStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

// ReviewApplication godoc
// @Summary      Review an application
// @Description  Moves a screened (viewed) application to accepted or rejected and emails the candidate
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Application ID"
// @Param        body  body      ReviewRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /admin/applications/{id}/status [patch]
// @Security     BearerAuth
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	id, ok := idParam(c, "id", "application")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	app, err := h.applicationUC.Review(c.Request.Context(), id, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application status updated", app)
}

// ExportApplications godoc
// @Summary      Export applications of a career
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        id      path   int     true   "Career ID"
// @Param        format  query  string  false  "Export format (xlsx, csv). Default: xlsx"
// @Success      200     {file}    file
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /admin/careers/{id}/applications/export [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportApplications(c *gin.Context) {
	id, ok := idParam(c, "id", "career")
	if !ok {
		return
	}

	file, err := h.exportUC.ExportApplications(c.Request.Context(), id, c.DefaultQuery("format", domain.ExportFormatXLSX))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
