package board

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/palemoky/greenlight/internal/apperrors"
	"github.com/palemoky/greenlight/internal/logger"
)

// 搜索门限：未发出的牌少于该数量时才允许穷举
const (
	DefaultRemovalThreshold = 8
	DefaultPlayThreshold    = 7
)

// Policy 决定何时允许穷举搜索。搜索的代价随未发出的牌数指数增长。
type Policy struct {
	RemovalThreshold int // 最佳出牌为弃牌时
	PlayThreshold    int // 最佳出牌为三张牌时
}

// DefaultPolicy 返回默认门限
func DefaultPolicy() Policy {
	return Policy{
		RemovalThreshold: DefaultRemovalThreshold,
		PlayThreshold:    DefaultPlayThreshold,
	}
}

// Allows 判断当前牌面是否可以搜索
func (p Policy) Allows(b *Board) bool {
	best := b.BestPlay()
	if best == nil {
		return false
	}
	undealt := b.Undealt()
	if best.IsRemoval() {
		return undealt < p.RemovalThreshold
	}
	return undealt < p.PlayThreshold
}

// Successors 穷举所有把牌堆发完的后续牌面（只计算一次）。
// 叶子牌面的 CurrentScore 是这条路线的最终累计得分。
//
// 代价随未发出的牌数指数增长，调用前必须经过 Policy 检查。
func (b *Board) Successors(base int) []*Board {
	if b.succSet {
		return b.succ
	}
	for _, nb := range b.branches(base) {
		if nb.isEnd() {
			b.succ = append(b.succ, nb)
		} else {
			b.succ = append(b.succ, nb.Successors(nb.score)...)
		}
	}
	b.succSet = true
	return b.succ
}

// branches 执行最佳出牌后再发牌得到的直接后继。
// 弃牌时每张未发出的牌一个分支；出三张牌时每个三张牌的组合一个分支，
// 剩余不足三张时一次发完。
func (b *Board) branches(base int) []*Board {
	best := b.BestPlay()
	undealt := b.deck.Undealt()
	if best == nil || len(undealt) == 0 {
		return nil
	}

	var result []*Board
	if best.IsRemoval() {
		for _, u := range undealt {
			nb := successor(b, base)
			if err := nb.Deal(u.Card); err != nil {
				panic(err)
			}
			result = append(result, nb)
		}
		return result
	}

	if len(undealt) < 3 {
		nb := successor(b, base)
		for _, u := range undealt {
			if err := nb.Deal(u.Card); err != nil {
				panic(err)
			}
		}
		return []*Board{nb}
	}

	n := len(undealt)
	for x := 0; x < n; x++ {
		for y := x + 1; y < n; y++ {
			for z := y + 1; z < n; z++ {
				nb := successor(b, base)
				if err := nb.Deal(undealt[x].Card, undealt[y].Card, undealt[z].Card); err != nil {
					panic(err)
				}
				result = append(result, nb)
			}
		}
	}
	return result
}

// MaxScore 对 Successors 取最大 CurrentScore；没有后继时 ok 为 false
func MaxScore(successors []*Board) (best int, ok bool) {
	for _, s := range successors {
		if !ok || s.score > best {
			best = s.score
			ok = true
		}
	}
	return best, ok
}

// Searcher 并行计算可达到的最高分
type Searcher struct {
	Policy  Policy
	Workers int
}

// NewSearcher 创建搜索器，workers 小于 1 时按 1 处理
func NewSearcher(p Policy, workers int) *Searcher {
	return &Searcher{Policy: p, Workers: max(workers, 1)}
}

// MaxAchievable 与 MaxScore(b.Successors(base)) 结果相同，但顶层分支分发到多个
// goroutine 上，且不保留叶子牌面。b 在搜索期间不能被修改，通常传入 Snapshot。
func (s *Searcher) MaxAchievable(ctx context.Context, b *Board, base int) (int, bool, error) {
	if !s.Policy.Allows(b) {
		return 0, false, apperrors.ErrSearchGated
	}

	branches := b.branches(base)
	if len(branches) == 0 {
		return 0, false, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)

	var (
		mu   sync.Mutex
		best int
		ok   bool
	)
	for _, nb := range branches {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.LogPanic(r)
					err = fmt.Errorf("search branch panicked: %v", r)
				}
			}()
			score, found, err := maxLeaf(ctx, nb)
			if err != nil || !found {
				return err
			}
			mu.Lock()
			if !ok || score > best {
				best, ok = score, true
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, false, err
	}
	return best, ok, nil
}

// maxLeaf 深度优先求 b 之下所有叶子的最高分，不做记忆化
func maxLeaf(ctx context.Context, b *Board) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if b.isEnd() {
		return b.score, true, nil
	}
	var (
		best int
		ok   bool
	)
	for _, nb := range b.branches(b.score) {
		score, found, err := maxLeaf(ctx, nb)
		if err != nil {
			return 0, false, err
		}
		if found && (!ok || score > best) {
			best, ok = score, true
		}
	}
	return best, ok, nil
}
