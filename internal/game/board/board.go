// Package board 牌面：发牌、评估牌的价值、选择最佳出牌，以及牌堆将尽时的穷举搜索。
package board

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/palemoky/greenlight/internal/apperrors"
	"github.com/palemoky/greenlight/internal/game/card"
	"github.com/palemoky/greenlight/internal/game/rule"
)

// Size 一个完整牌面的牌数
const Size = 5

// Board 当前摆出的牌。牌面凑满后不再改变，下一回合总是创建新的 Board。
type Board struct {
	cards []*card.State
	score int
	deck  *card.Deck

	best    *rule.Play
	succ    []*Board
	succSet bool
}

// New 为新的一局创建空牌面
func New(d *card.Deck) *Board {
	return &Board{deck: d}
}

// NextTurn 回合推进：保留上一牌面中未弃的牌，共用同一副牌堆
func NextTurn(last *Board, score int) *Board {
	b := &Board{deck: last.deck, score: score}
	for _, c := range last.cards {
		if c.Location() != card.Discarded {
			b.cards = append(b.cards, c)
		}
	}
	return b
}

// successor 搜索用：拷贝牌堆，模拟执行 last 的最佳出牌，不修改 last 及其牌堆
func successor(last *Board, base int) *Board {
	best := last.BestPlay()
	b := &Board{
		deck:  last.deck.Copy(),
		score: best.Score() + base,
	}
	for _, c := range best.Cards() {
		b.deck.MustCardAt(c.Color, c.Number).Discard()
	}
	for _, c := range last.cards {
		if !best.Contains(c.Card) {
			b.cards = append(b.cards, b.deck.MustCardAt(c.Color, c.Number))
		}
	}
	return b
}

// Snapshot 深拷贝牌面和牌堆，供其他 goroutine 只读搜索
func (b *Board) Snapshot() *Board {
	s := &Board{deck: b.deck.Copy(), score: b.score}
	for _, c := range b.cards {
		s.cards = append(s.cards, s.deck.MustCardAt(c.Color, c.Number))
	}
	return s
}

// Deal 发牌到牌面，不附带表现层句柄
func (b *Board) Deal(cards ...card.Card) error {
	if len(b.cards)+len(cards) > Size {
		return fmt.Errorf("%w: have %d, dealing %d", apperrors.ErrBoardFull, len(b.cards), len(cards))
	}
	states := make([]*card.State, 0, len(cards))
	for _, c := range cards {
		s, err := b.resolve(c)
		if err != nil {
			return err
		}
		states = append(states, s)
	}
	for _, s := range states {
		b.place(s, nil)
	}
	return nil
}

// DealWithHandle 发一张牌，并记住表现层句柄以便之后发出建议
func (b *Board) DealWithHandle(c card.Card, h card.Handle) error {
	if len(b.cards) >= Size {
		return fmt.Errorf("%w: have %d", apperrors.ErrBoardFull, len(b.cards))
	}
	s, err := b.resolve(c)
	if err != nil {
		return err
	}
	b.place(s, h)
	return nil
}

func (b *Board) resolve(c card.Card) (*card.State, error) {
	s, err := b.deck.Lookup(c)
	if err != nil {
		return nil, err
	}
	if s.Location() != card.NotDealt {
		return nil, fmt.Errorf("%w: %v is %v", apperrors.ErrCardUnavailable, c, s.Location())
	}
	return s, nil
}

func (b *Board) place(s *card.State, h card.Handle) {
	s.Deal(h)
	b.cards = append(b.cards, s)
	b.best = nil
	b.succ = nil
	b.succSet = false
}

// IsComplete 牌面上恰好有 5 张牌
func (b *Board) IsComplete() bool {
	return len(b.cards) == Size
}

// CurrentScore 到这个牌面为止的累计得分
func (b *Board) CurrentScore() int {
	return b.score
}

// Cards 牌面上的牌，按发牌顺序
func (b *Board) Cards() []*card.State {
	return slices.Clone(b.cards)
}

// Len 牌面上的牌数
func (b *Board) Len() int {
	return len(b.cards)
}

// Undealt 牌堆中还未发出的牌数
func (b *Board) Undealt() int {
	return len(b.deck.Undealt())
}

func (b *Board) isEnd() bool {
	return b.Undealt() == 0
}

// Suggest 牌面凑满后的最佳出牌
func (b *Board) Suggest() (*rule.Play, error) {
	if !b.IsComplete() {
		return nil, fmt.Errorf("%w: have %d", apperrors.ErrBoardIncomplete, len(b.cards))
	}
	return b.BestPlay(), nil
}

// BestPlay 最佳出牌（只计算一次）。没有有效的三张牌时，弃掉 rank 最低的牌。
// 空牌面返回 nil。
func (b *Board) BestPlay() *rule.Play {
	if b.best != nil || len(b.cards) == 0 {
		return b.best
	}

	b.rankCards()
	valid := b.validPlays()
	if len(valid) == 0 {
		ranked := slices.Clone(b.cards)
		slices.SortStableFunc(ranked, func(x, y *card.State) int {
			switch {
			case x.Rank() < y.Rank():
				return -1
			case x.Rank() > y.Rank():
				return 1
			default:
				return 0
			}
		})
		b.best = rule.NewRemoval(ranked[0])
		return b.best
	}

	best := valid[0]
	for _, p := range valid[1:] {
		if p.Score() > best.Score() {
			best = p
		}
	}
	b.best = best
	return b.best
}

// ValidPlays 牌面上所有有效的三张牌组合，按发现顺序排列
func (b *Board) ValidPlays() []*rule.Play {
	b.rankCards()
	return b.validPlays()
}

// validPlays 每个三张牌的集合只枚举一次（下标 i<j<k）
func (b *Board) validPlays() []*rule.Play {
	var plays []*rule.Play
	n := len(b.cards)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				p := rule.NewHand(b.cards[i], b.cards[j], b.cards[k])
				if p.IsValid() {
					plays = append(plays, p)
				}
			}
		}
	}
	return plays
}

// rankCards 为牌面上的每张牌计算期望价值：
// rank = Σ(score * 在牌面上的张数/3) / (组合数 * 3)
func (b *Board) rankCards() {
	for _, c := range b.cards {
		plays := rule.CandidatePlays(b.deck, c)
		if len(plays) == 0 {
			c.SetRank(0)
			continue
		}
		var rank float32
		for _, p := range plays {
			coeff := float32(rule.OnBoardCount(p)) / 3
			rank += float32(p.Score()) * coeff
		}
		rank /= float32(len(plays) * 3)
		c.SetRank(rank)
	}
}

// Key 结构化键：牌面上的牌（有序）、已弃的牌和基础分。可用作缓存键。
func (b *Board) Key(base int) string {
	var sb strings.Builder
	sb.WriteString("board:")
	for i, c := range b.cards {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c.Key()))
	}
	sb.WriteString("|discarded:")
	for i, c := range b.deck.Discarded() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c.Key()))
	}
	sb.WriteString("|base:")
	sb.WriteString(strconv.Itoa(base))
	return sb.String()
}

// Hash 牌堆大小 × 最佳出牌得分。不是单射，不能用来判断相等。
func (b *Board) Hash() int {
	best := b.BestPlay()
	if best == nil {
		return 0
	}
	return len(b.deck.All()) * best.Score()
}

func (b *Board) String() string {
	parts := make([]string, len(b.cards))
	for i, c := range b.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " : ")
}
