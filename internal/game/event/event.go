// Package event 分数更新的发布/订阅
package event

import (
	"sync"

	"github.com/google/uuid"
)

// 可达最高分的哨兵值
const (
	MaxUnknown   = -1   // 还不能计算
	MaxComputing = -100 // 正在计算
)

// ScoreUpdate 一次分数更新
type ScoreUpdate struct {
	Score         int
	MaxAchievable int
}

// Known 可达最高分已经计算出来
func (u ScoreUpdate) Known() bool {
	return u.MaxAchievable != MaxUnknown && u.MaxAchievable != MaxComputing
}

// Computing 可达最高分正在计算
func (u ScoreUpdate) Computing() bool {
	return u.MaxAchievable == MaxComputing
}

// BelowTarget 已知的最高分达不到目标分
func (u ScoreUpdate) BelowTarget(target int) bool {
	return u.Known() && u.MaxAchievable < target
}

// Observer 分数订阅者
type Observer interface {
	UpdateScore(u ScoreUpdate)
}

// ObserverFunc 让普通函数实现 Observer
type ObserverFunc func(u ScoreUpdate)

func (f ObserverFunc) UpdateScore(u ScoreUpdate) { f(u) }

type subscription struct {
	id       string
	observer Observer
}

// Bus 同步地把更新分发给所有订阅者
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	last ScoreUpdate
}

// NewBus 创建分发器，初始状态为 (0, MaxUnknown)
func NewBus() *Bus {
	return &Bus{last: ScoreUpdate{MaxAchievable: MaxUnknown}}
}

// Subscribe 注册订阅者，返回用于取消订阅的 ID
func (b *Bus) Subscribe(o Observer) string {
	id := uuid.NewString()
	b.mu.Lock()
	b.subs = append(b.subs, subscription{id: id, observer: o})
	b.mu.Unlock()
	return id
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish 依次通知所有订阅者，全部返回后才返回
func (b *Bus) Publish(u ScoreUpdate) {
	b.mu.Lock()
	b.last = u
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.observer.UpdateScore(u)
	}
}

// Last 最近一次发布的更新
func (b *Bus) Last() ScoreUpdate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Len 订阅者数量
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
