package fallback

import (
	"context"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the llm.Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockResponder mocks the domain.Responder interface
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) SendOrEdit(ctx context.Context, reply domain.Reply) ([]int, error) {
	args := m.Called(ctx, reply)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) LogError(err error, where string) {
	m.Called(err, where)
}
