package classifier

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClassifier is a mock implementation of Classifier using testify/mock.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) (float64, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(float64), args.Error(1)
}
