package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"go-recruiter-backend/internal/delivery/http/response"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/apperror"
	"go-recruiter-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
	maxFileSize   int64
}

// ApplicationLimits are the per-route rate limit middlewares.
type ApplicationLimits struct {
	Apply gin.HandlerFunc
	List  gin.HandlerFunc
}

// NewApplicationHandler registers candidate application routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase, maxFileSize int64, limits ApplicationLimits) {
	handler := &ApplicationHandler{applicationUC: applicationUC, maxFileSize: maxFileSize}

	r.POST("/apply", orNext(limits.Apply), handler.Apply)
	r.GET("/applications", orNext(limits.List), handler.ListMine)
	r.POST("/applications/check", handler.CheckApplied)
}

// ApplyRequest holds the text fields of the multipart application form
type ApplyRequest struct {
	CareerID    int64  `form:"career_id" binding:"required,gt=0"`
	FullName    string `form:"full_name" binding:"required,min=2,max=100,valid_name"`
	PhoneNumber string `form:"phone_number" binding:"required,valid_phone"`
	Email       string `form:"email" binding:"required,email,max=254"`
}

type ApplyResponse struct {
	ApplicationID int64 `json:"application_id"`
}

type CheckAppliedRequest struct {
	CareerIDs []int64 `json:"career_ids" binding:"required,min=1,max=100,dive,gt=0"`
}

// Apply godoc
// @Summary      Apply to a career
// @Description  Uploads a CV (PDF or DOCX) and an optional supporting document. Screening runs in the background.
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Param        career_id     formData  int     true   "Career ID"
// @Param        full_name     formData  string  true   "Full name"
// @Param        phone_number  formData  string  true   "Phone number"
// @Param        email         formData  string  true   "Email"
// @Param        cv            formData  file    true   "CV (PDF or DOCX)"
// @Param        document      formData  file    false  "Supporting document (PDF or DOCX)"
// @Success      202           {object}  response.Response{data=ApplyResponse}
// @Failure      400           {object}  response.Response
// @Failure      404           {object}  response.Response
// @Failure      409           {object}  response.Response
// @Failure      413           {object}  response.Response
// @Failure      415           {object}  response.Response
// @Failure      422           {object}  response.Response
// @Failure      429           {object}  response.Response
// @Failure      503           {object}  response.Response
// @Router       /apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	// Two files plus form overhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxFileSize+1<<20)

	var req ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(apperror.TooLarge("Request body is too large"))
			return
		}
		_ = c.Error(bindError(err))
		return
	}

	cvHeader, err := c.FormFile("cv")
	if err != nil {
		_ = c.Error(apperror.BadRequest("CV is required to submit an application"))
		return
	}
	cv, err := h.readUpload(cvHeader)
	if err != nil {
		_ = c.Error(err)
		return
	}

	in := domain.ApplyInput{
		CareerID:    req.CareerID,
		UserID:      c.GetString(string(domain.KeyUserID)),
		FullName:    req.FullName,
		PhoneNumber: validation.NormalizePhone(req.PhoneNumber),
		Email:       req.Email,
		CV:          *cv,
	}

	if docHeader, err := c.FormFile("document"); err == nil {
		doc, err := h.readUpload(docHeader)
		if err != nil {
			_ = c.Error(err)
			return
		}
		in.Document = doc
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusAccepted, "Application received and queued for screening", ApplyResponse{ApplicationID: app.ID})
}

// readUpload reads at most maxFileSize+1 bytes so the usecase can tell an
// oversized file from one that fits exactly.
func (h *ApplicationHandler) readUpload(fh *multipart.FileHeader) (*domain.Upload, error) {
	if fh.Size > h.maxFileSize {
		return nil, apperror.TooLarge("File exceeds the maximum allowed size")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.BadRequest("Could not read the uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		return nil, apperror.BadRequest("Could not read the uploaded file")
	}
	return &domain.Upload{Filename: fh.Filename, Data: data}, nil
}

// ListMine godoc
// @Summary      Get my applications
// @Description  Applications submitted by the caller, newest first
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      401  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	applications, err := h.applicationUC.ListMine(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// CheckApplied godoc
// @Summary      Check applied careers
// @Description  Reports, for each career id, whether the caller has applied
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      CheckAppliedRequest  true  "Career IDs"
// @Success      200   {object}  response.Response{data=map[int64]bool}
// @Failure      400   {object}  response.Response
// @Router       /applications/check [post]
// @Security     BearerAuth
func (h *ApplicationHandler) CheckApplied(c *gin.Context) {
	var req CheckAppliedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	applied, err := h.applicationUC.CheckApplied(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req.CareerIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applied status retrieved", applied)
}
