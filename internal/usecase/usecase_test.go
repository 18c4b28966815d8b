package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/internal/worker"
	"go-recruiter-backend/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) GetByCareerID(ctx context.Context, careerID int64) ([]domain.Application, error) {
	args := m.Called(ctx, careerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) CheckExists(ctx context.Context, careerID int64, userID string) (bool, error) {
	args := m.Called(ctx, careerID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) AppliedCareerIDs(ctx context.Context, userID string, careerIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, careerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockApplicationRepo) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.ApplicationStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) ListPending(ctx context.Context, before time.Time, limit int) ([]domain.Application, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

type MockCareerRepo struct {
	mock.Mock
}

func (m *MockCareerRepo) Create(ctx context.Context, career *domain.CareerPost) error {
	return m.Called(ctx, career).Error(0)
}

func (m *MockCareerRepo) GetByID(ctx context.Context, id int64) (*domain.CareerPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CareerPost), args.Error(1)
}

func (m *MockCareerRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.CareerPost, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.CareerPost), args.Get(1).(int64), args.Error(2)
}

// Mock collaborators
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, jobDescription, resumeText string) (*domain.ScoringResult, error) {
	args := m.Called(ctx, jobDescription, resumeText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoringResult), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatus(ctx context.Context, email string, status domain.ApplicationStatus, jobTitle string) error {
	return m.Called(ctx, email, status, jobTitle).Error(0)
}

type MockScreening struct {
	mock.Mock
}

func (m *MockScreening) RunScreening(ctx context.Context, req domain.ScreeningRequest) domain.ScreeningReport {
	return m.Called(ctx, req).Get(0).(domain.ScreeningReport)
}

// fakeScheduler keeps submitted tasks so tests can run them on demand.
type fakeScheduler struct {
	err   error
	names []string
	tasks []worker.Task
}

func (s *fakeScheduler) Submit(name string, task worker.Task) error {
	if s.err != nil {
		return s.err
	}
	s.names = append(s.names, name)
	s.tasks = append(s.tasks, task)
	return nil
}

// memStorage is an in-memory storage.Storage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "mem/" + name
	s.objects[ref] = data
	return ref, nil
}

func (s *memStorage) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, ref)
	return nil
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
