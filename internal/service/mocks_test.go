package service

import (
	"context"
	"sync"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockCatalogStore mocks the CatalogStore interface
type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalogStore) CategoryByID(ctx context.Context, id int64) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCatalogStore) CategoryByName(ctx context.Context, name string) (domain.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCatalogStore) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogStore) ProductsByName(ctx context.Context, fragment string) ([]domain.Product, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogStore) ProductNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogStore) MostSoldByCategory(ctx context.Context, categoryID int64) (domain.ProductSales, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(domain.ProductSales), args.Error(1)
}

func (m *MockCatalogStore) CheapestByCategory(ctx context.Context, categoryID int64) (domain.Product, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalogStore) MostOrdered(ctx context.Context) (domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Product), args.Error(1)
}

// MockFeedbackStore mocks the FeedbackStore interface
type MockFeedbackStore struct {
	mock.Mock
}

func (m *MockFeedbackStore) SaveFeedback(ctx context.Context, fb *domain.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

type MockDeleter struct {
	mock.Mock
}

func (m *MockDeleter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) LogError(err error, where string) {
	m.Called(err, where)
}

func (m *MockNotifier) LogFeedback(fb domain.Feedback) {
	m.Called(fb)
}

type MockEscalator struct {
	mock.Mock
}

func (m *MockEscalator) Escalate(ctx context.Context, chatID int64, respond domain.Responder) error {
	args := m.Called(ctx, chatID, respond)
	return args.Error(0)
}

// recordingResponder hands out increasing message ids and keeps every reply.
type recordingResponder struct {
	mu      sync.Mutex
	nextID  int
	replies []domain.Reply
}

func (r *recordingResponder) SendOrEdit(_ context.Context, reply domain.Reply) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.replies = append(r.replies, reply)
	return []int{r.nextID}, nil
}

func (r *recordingResponder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	texts := make([]string, len(r.replies))
	for i, reply := range r.replies {
		texts[i] = reply.Text
	}
	return texts
}

func (r *recordingResponder) last() domain.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replies[len(r.replies)-1]
}
