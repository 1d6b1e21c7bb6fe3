//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/greenlight/internal/game/event"
)

// MockObserver 实现 event.Observer 的 mock
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) UpdateScore(u event.ScoreUpdate) {
	m.Called(u)
}

// UpdateRecorder 记录收到的所有分数更新，可并发使用
type UpdateRecorder struct {
	mu      sync.Mutex
	updates []event.ScoreUpdate
}

func (r *UpdateRecorder) UpdateScore(u event.ScoreUpdate) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
}

// Updates 返回已记录更新的副本
func (r *UpdateRecorder) Updates() []event.ScoreUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.ScoreUpdate, len(r.updates))
	copy(out, r.updates)
	return out
}

// Last 最后一次更新
func (r *UpdateRecorder) Last() event.ScoreUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return event.ScoreUpdate{MaxAchievable: event.MaxUnknown}
	}
	return r.updates[len(r.updates)-1]
}
