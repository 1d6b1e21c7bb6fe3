//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockHandle 实现 card.Handle 的 mock
type MockHandle struct {
	mock.Mock
}

func (m *MockHandle) SuggestPlay() {
	m.Called()
}

func (m *MockHandle) SuggestRemove() {
	m.Called()
}

func (m *MockHandle) Reset() {
	m.Called()
}

// RecordingHandle 记录收到的信号，不使用 testify（用于不需要断言调用顺序的测试）
type RecordingHandle struct {
	Signals []string
}

func (h *RecordingHandle) SuggestPlay()   { h.Signals = append(h.Signals, "play") }
func (h *RecordingHandle) SuggestRemove() { h.Signals = append(h.Signals, "remove") }
func (h *RecordingHandle) Reset()         { h.Signals = append(h.Signals, "reset") }

// Last 最后一次收到的信号
func (h *RecordingHandle) Last() string {
	if len(h.Signals) == 0 {
		return ""
	}
	return h.Signals[len(h.Signals)-1]
}
