package v1

import (
	"net/http"
	"strconv"

	"go-recruiter-backend/internal/delivery/http/response"
	"go-recruiter-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CareerHandler struct {
	careerUC domain.CareerUsecase
}

// NewCareerHandler registers the public career listing and the
// authenticated create route behind createLimit.
func NewCareerHandler(public, protected *gin.RouterGroup, careerUC domain.CareerUsecase, createLimit gin.HandlerFunc) {
	handler := &CareerHandler{careerUC: careerUC}

	public.GET("/careers", handler.List)
	public.GET("/careers/:id", handler.GetDetails)

	protected.POST("/careers", orNext(createLimit), handler.Create)
}

type CreateCareerRequest struct {
	Title        string `json:"title" form:"title" binding:"required,max=200,no_emoji"`
	Description  string `json:"description" form:"description" binding:"required"`
	Requirements string `json:"requirements" form:"requirements"`
	Location     string `json:"location" form:"location" binding:"max=200"`
	Content      string `json:"content" form:"content"`
}

// List godoc
// @Summary      List careers
// @Description  Paginated list of open career posts, newest first
// @Tags         careers
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 10, max 100)"
// @Success      200    {object}  response.Response{data=response.Page{items=[]domain.CareerPost}}
// @Router       /careers [get]
func (h *CareerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	careers, total, err := h.careerUC.ListCareers(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	response.Success(c, http.StatusOK, "Careers retrieved", response.Page{
		Items:    careers,
		Page:     page,
		PageSize: limit,
		Total:    total,
	})
}

// GetDetails godoc
// @Summary      Get career details
// @Tags         careers
// @Produce      json
// @Param        id   path      int  true  "Career ID"
// @Success      200  {object}  response.Response{data=domain.CareerPost}
// @Failure      404  {object}  response.Response
// @Router       /careers/{id} [get]
func (h *CareerHandler) GetDetails(c *gin.Context) {
	id, ok := idParam(c, "id", "career")
	if !ok {
		return
	}

	career, err := h.careerUC.GetCareer(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Career retrieved", career)
}

// Create godoc
// @Summary      Create a career post
// @Description  Accepts JSON or form fields
// @Tags         careers
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        career  body      CreateCareerRequest  true  "Career"
// @Success      201     {object}  response.Response{data=domain.CareerPost}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      429     {object}  response.Response
// @Router       /careers [post]
// @Security     BearerAuth
func (h *CareerHandler) Create(c *gin.Context) {
	var req CreateCareerRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	career := &domain.CareerPost{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Content:      req.Content,
	}
	if err := h.careerUC.CreateCareer(c.Request.Context(), career); err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Career created", career)
}
