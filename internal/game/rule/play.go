package rule

import (
	"slices"
	"strconv"
	"strings"

	"github.com/palemoky/greenlight/internal/game/card"
)

// PlayType 定义出牌类型
type PlayType int

const (
	Invalid      PlayType = iota
	Removal                // 弃一张牌
	Run                    // 任意颜色的三连
	SameNumber             // 三种颜色的同点数
	SameColorRun           // 同色三连
)

var playTypeNames = map[PlayType]string{
	Invalid:      "无效",
	Removal:      "弃牌",
	Run:          "顺子",
	SameNumber:   "同点",
	SameColorRun: "同色顺子",
}

func (t PlayType) String() string {
	if name, ok := playTypeNames[t]; ok {
		return name
	}
	return "无效"
}

// Play 一张牌的弃牌，或三张牌的出牌。创建后不可变。
type Play struct {
	cards   []*card.State
	removal bool
	kind    PlayType
	score   int
}

// NewRemoval 创建弃牌
func NewRemoval(s *card.State) *Play {
	return &Play{cards: []*card.State{s}, removal: true, kind: Removal}
}

// NewHand 创建三张牌的出牌，牌按点数升序排列
func NewHand(a, b, c *card.State) *Play {
	cards := []*card.State{a, b, c}
	slices.SortStableFunc(cards, func(x, y *card.State) int {
		return x.Number - y.Number
	})
	p := &Play{cards: cards}
	p.kind, p.score = evaluate(cards)
	return p
}

// evaluate 按计分表给排好序的三张牌打分
//
//	同色三连      40 + 最小点数*10
//	异色同点      10 + 点数*10
//	任意颜色三连  最小点数*10
func evaluate(cards []*card.State) (PlayType, int) {
	low := cards[0].Number
	switch {
	case allSameColor(cards) && isRun(cards):
		return SameColorRun, 40 + low*10
	case allSameNumber(cards):
		return SameNumber, 10 + low*10
	case isRun(cards):
		return Run, low * 10
	default:
		return Invalid, 0
	}
}

// isRun 依赖升序排列
func isRun(cards []*card.State) bool {
	n := cards[0].Number
	return n+1 == cards[1].Number && n+2 == cards[2].Number
}

func allSameNumber(cards []*card.State) bool {
	return allDifferentColors(cards) &&
		cards[0].Number == cards[1].Number &&
		cards[1].Number == cards[2].Number
}

func allSameColor(cards []*card.State) bool {
	return cards[0].Color == cards[1].Color && cards[1].Color == cards[2].Color
}

func allDifferentColors(cards []*card.State) bool {
	return cards[0].Color != cards[1].Color &&
		cards[1].Color != cards[2].Color &&
		cards[0].Color != cards[2].Color
}

func (p *Play) IsRemoval() bool { return p.removal }
func (p *Play) Type() PlayType  { return p.kind }

// Score 弃牌恒为 0；无效的三张牌也为 0
func (p *Play) Score() int { return p.score }

// Cards 返回这次出牌的牌
func (p *Play) Cards() []*card.State {
	return slices.Clone(p.cards)
}

// Cost 牌的 rank 之和，每加一张就截断为整数
func (p *Play) Cost() int {
	total := 0
	for _, c := range p.cards {
		total = int(float32(total) + c.Rank())
	}
	return total
}

// IsValid 没有弃牌；三张牌时还必须得分且得分不低于成本
func (p *Play) IsValid() bool {
	for _, c := range p.cards {
		if c.Location() == card.Discarded {
			return false
		}
	}
	if p.removal {
		return true
	}
	return p.score > 0 && p.score >= p.Cost()
}

// Contains reports whether c is part of the play.
func (p *Play) Contains(c card.Card) bool {
	for _, s := range p.cards {
		if s.Card == c {
			return true
		}
	}
	return false
}

// Equal 两次出牌包含相同的牌即相等，与顺序无关
func (p *Play) Equal(o *Play) bool {
	if o == nil || len(p.cards) != len(o.cards) {
		return false
	}
	for _, s := range o.cards {
		if !p.Contains(s.Card) {
			return false
		}
	}
	return true
}

// Key 与牌的顺序无关的集合键，Equal 的出牌 Key 相同
func (p *Play) Key() string {
	keys := make([]int, len(p.cards))
	for i, s := range p.cards {
		keys[i] = s.Key()
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, ",")
}

func (p *Play) String() string {
	parts := make([]string, len(p.cards))
	for i, s := range p.cards {
		parts[i] = s.String()
	}
	return strings.Join(parts, " : ")
}
