package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-recruiter-backend/config"
	v1 "go-recruiter-backend/internal/delivery/http/v1"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/apperror"
	"go-recruiter-backend/pkg/auth"
	"go-recruiter-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mocks ---

type MockCareerUC struct{ mock.Mock }

func (m *MockCareerUC) CreateCareer(ctx context.Context, career *domain.CareerPost) error {
	args := m.Called(ctx, career)
	if args.Error(0) == nil {
		career.ID = 7
	}
	return args.Error(0)
}

func (m *MockCareerUC) GetCareer(ctx context.Context, id int64) (*domain.CareerPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CareerPost), args.Error(1)
}

func (m *MockCareerUC) ListCareers(ctx context.Context, page, pageSize int) ([]domain.CareerPost, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.CareerPost), args.Get(1).(int64), args.Error(2)
}

type MockApplicationUC struct{ mock.Mock }

func (m *MockApplicationUC) Apply(ctx context.Context, in domain.ApplyInput) (*domain.Application, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUC) ListMine(ctx context.Context, userID string) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationUC) CheckApplied(ctx context.Context, userID string, careerIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, careerIDs)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockApplicationUC) Review(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (*domain.Application, error) {
	args := m.Called(ctx, applicationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUC) ResumePending(ctx context.Context, before time.Time, limit int) (int, error) {
	args := m.Called(ctx, before, limit)
	return args.Int(0), args.Error(1)
}

type MockExportUC struct{ mock.Mock }

func (m *MockExportUC) ExportApplications(ctx context.Context, careerID int64, format string) (*domain.ExportFile, error) {
	args := m.Called(ctx, careerID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportFile), args.Error(1)
}

type stubHealth struct{ status domain.HealthStatus }

func (s stubHealth) Check(context.Context) domain.HealthStatus { return s.status }

// tokenVerifier accepts "user" and "admin" bearer tokens.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, raw string) (*auth.Identity, error) {
	switch raw {
	case "user":
		return &auth.Identity{UID: "uid-1", Email: "jane@example.com"}, nil
	case "admin":
		return &auth.Identity{UID: "admin-uid"}, nil
	}
	return nil, auth.ErrInvalidToken
}

type fixture struct {
	careers *MockCareerUC
	apps    *MockApplicationUC
	export  *MockExportUC
	router  *gin.Engine
}

func newFixture(health domain.HealthStatus) *fixture {
	f := &fixture{careers: new(MockCareerUC), apps: new(MockApplicationUC), export: new(MockExportUC)}
	f.router = v1.NewRouter(v1.RouterDeps{
		CareerUC:      f.careers,
		ApplicationUC: f.apps,
		ExportUC:      f.export,
		HealthUC:      stubHealth{status: health},
		Verifier:      tokenVerifier{},
		Log:           logger.Discard(),
		Config: &config.Config{
			CORSOrigins:            []string{"*"},
			AdminUIDs:              []string{"admin-uid"},
			MaxFileSize:            1024,
			RateLimitWindowSeconds: 60,
		},
	})
	return f
}

func (f *fixture) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func readEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func applyForm(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/apply", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"career_id":    "9",
		"full_name":    "Jane Doe",
		"phone_number": "+62 812-3456-789",
		"email":        "jane@example.com",
	}
}

// --- Tests ---

func TestHealthHandler(t *testing.T) {
	t.Run("Should return 200 when every service is up", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{Status: "ok", Services: map[string]string{"database": "up"}})
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/health", nil), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, readEnvelope(t, w).Success)
	})

	t.Run("Should return 503 when a service is down", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{Status: "degraded", Services: map[string]string{"database": "down"}})
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/health", nil), "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"down"`)
	})
}

func TestCareerHandler(t *testing.T) {
	t.Run("Should list careers publicly with pagination", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.careers.On("ListCareers", mock.Anything, 2, 5).Return([]domain.CareerPost{{ID: 1, Title: "Go Engineer"}}, int64(6), nil)

		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/careers?page=2&limit=5", nil), "")
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Items    []domain.CareerPost `json:"items"`
			Page     int                 `json:"page"`
			PageSize int                 `json:"page_size"`
			Total    int64               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(readEnvelope(t, w).Data, &page))
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.PageSize)
		assert.Equal(t, int64(6), page.Total)
	})

	t.Run("Should reject a non-numeric id", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/careers/abc", nil), "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should pass not found through", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.careers.On("GetCareer", mock.Anything, int64(3)).Return(nil, apperror.NotFound("Career not found"))
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/careers/3", nil), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Should require authentication to create", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(jsonRequest(http.MethodPost, "/v1/careers", `{"title":"Go","description":"x"}`), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should name the missing field", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(jsonRequest(http.MethodPost, "/v1/careers", `{"description":"x"}`), "user")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Title: is required", readEnvelope(t, w).Message)
	})

	t.Run("Should create from form fields", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.careers.On("CreateCareer", mock.Anything, mock.MatchedBy(func(c *domain.CareerPost) bool {
			return c.Title == "Go Engineer" && c.Location == "Jakarta"
		})).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/careers", strings.NewReader("title=Go+Engineer&description=Backend&location=Jakarta"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := f.do(req, "user")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(readEnvelope(t, w).Data), `"id":7`)
	})
}

func TestApplyHandler(t *testing.T) {
	cv := []byte("%PDF-1.4 résumé")

	t.Run("Should accept an application and return its id", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("Apply", mock.Anything, mock.MatchedBy(func(in domain.ApplyInput) bool {
			return in.CareerID == 9 &&
				in.UserID == "uid-1" &&
				in.PhoneNumber == "+628123456789" &&
				bytes.Equal(in.CV.Data, cv) &&
				in.CV.Filename == "cv.pdf" &&
				in.Document == nil
		})).Return(&domain.Application{ID: 42, Status: domain.StatusPending}, nil)

		w := f.do(applyForm(t, validFields(), map[string][]byte{"cv": cv}), "user")

		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		assert.JSONEq(t, `{"application_id":42}`, string(readEnvelope(t, w).Data))
		f.apps.AssertExpectations(t)
	})

	t.Run("Should forward the optional document", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("Apply", mock.Anything, mock.MatchedBy(func(in domain.ApplyInput) bool {
			return in.Document != nil && in.Document.Filename == "document.pdf"
		})).Return(&domain.Application{ID: 43}, nil)

		w := f.do(applyForm(t, validFields(), map[string][]byte{"cv": cv, "document": []byte("%PDF-1.4 cert")}), "user")
		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("Should require a CV", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(applyForm(t, validFields(), nil), "user")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.apps.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an invalid phone number", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		fields := validFields()
		fields["phone_number"] = "call me"
		w := f.do(applyForm(t, fields, map[string][]byte{"cv": cv}), "user")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, readEnvelope(t, w).Message, "Phone number")
	})

	t.Run("Should reject an oversized CV before calling the usecase", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(applyForm(t, validFields(), map[string][]byte{"cv": bytes.Repeat([]byte("a"), 2048)}), "user")
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		f.apps.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("Should surface usecase conflicts", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("Apply", mock.Anything, mock.Anything).Return(nil, apperror.Conflict("You have already applied for this position"))
		w := f.do(applyForm(t, validFields(), map[string][]byte{"cv": cv}), "user")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Should hide unexpected errors", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("Apply", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
		w := f.do(applyForm(t, validFields(), map[string][]byte{"cv": cv}), "user")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestApplicationsHandler(t *testing.T) {
	t.Run("Should list the caller's applications", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("ListMine", mock.Anything, "uid-1").Return([]domain.Application{{ID: 2}, {ID: 1}}, nil)
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/applications", nil), "user")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(readEnvelope(t, w).Data), `"id":2`)
	})

	t.Run("Should check applied careers", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("CheckApplied", mock.Anything, "uid-1", []int64{1, 2}).Return(map[int64]bool{1: true, 2: false}, nil)
		w := f.do(jsonRequest(http.MethodPost, "/v1/applications/check", `{"career_ids":[1,2]}`), "user")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"1":true,"2":false}`, string(readEnvelope(t, w).Data))
	})

	t.Run("Should reject an empty career id list", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(jsonRequest(http.MethodPost, "/v1/applications/check", `{"career_ids":[]}`), "user")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminHandler(t *testing.T) {
	t.Run("Should forbid non-admin reviewers", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(jsonRequest(http.MethodPatch, "/v1/admin/applications/5/status", `{"status":"accepted"}`), "user")
		assert.Equal(t, http.StatusForbidden, w.Code)
		f.apps.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should review as admin", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.apps.On("Review", mock.Anything, int64(5), domain.StatusAccepted).Return(&domain.Application{ID: 5, Status: domain.StatusAccepted}, nil)
		w := f.do(jsonRequest(http.MethodPatch, "/v1/admin/applications/5/status", `{"status":"accepted"}`), "admin")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(readEnvelope(t, w).Data), `"status":"accepted"`)
	})

	t.Run("Should reject statuses reviewers cannot set", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		w := f.do(jsonRequest(http.MethodPatch, "/v1/admin/applications/5/status", `{"status":"viewed"}`), "admin")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should stream the export as an attachment", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.export.On("ExportApplications", mock.Anything, int64(9), "csv").Return(&domain.ExportFile{
			Filename:    "career_9_applications.csv",
			ContentType: "text/csv",
			Data:        []byte("id,full_name\n1,Jane Doe\n"),
		}, nil)

		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/admin/careers/9/applications/export?format=csv", nil), "admin")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "attachment; filename=career_9_applications.csv", w.Header().Get("Content-Disposition"))
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Equal(t, "id,full_name\n1,Jane Doe\n", w.Body.String())
	})

	t.Run("Should default the export to xlsx", func(t *testing.T) {
		f := newFixture(domain.HealthStatus{})
		f.export.On("ExportApplications", mock.Anything, int64(9), "xlsx").Return(nil, apperror.NotFound("Career not found"))
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/admin/careers/9/applications/export", nil), "admin")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
