//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockResultCache 实现 storage.ResultCache 的 mock
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, key string) (int, bool, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockResultCache) Set(ctx context.Context, key string, score int) error {
	args := m.Called(ctx, key, score)
	return args.Error(0)
}
