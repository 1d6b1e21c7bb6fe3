package card

import (
	"fmt"
	"math/rand/v2"

	"github.com/palemoky/greenlight/internal/apperrors"
)

// Deck 一局游戏的牌堆，每个 (颜色, 点数) 恰好对应一个 State
type Deck struct {
	cards [len(Colors)][MaxNumber]*State
}

// NewDeck 创建一副 24 张未发出的牌
func NewDeck() *Deck {
	d := &Deck{}
	for _, c := range Colors {
		for n := MinNumber; n <= MaxNumber; n++ {
			d.cards[c][n-1] = newState(New(c, n))
		}
	}
	return d
}

// CardAt 查找指定颜色和点数的牌
func (d *Deck) CardAt(c Color, n int) (*State, error) {
	card := New(c, n)
	if !card.Valid() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCardNotFound, card)
	}
	return d.cards[c][n-1], nil
}

// Lookup 查找与 c 身份相同的牌，c 可以来自另一副牌
func (d *Deck) Lookup(c Card) (*State, error) {
	return d.CardAt(c.Color, c.Number)
}

// MustCardAt 供已校验过输入的调用方使用，越界直接 panic
func (d *Deck) MustCardAt(c Color, n int) *State {
	s, err := d.CardAt(c, n)
	if err != nil {
		panic(err)
	}
	return s
}

// All 按颜色优先、点数升序返回所有牌
func (d *Deck) All() []*State {
	all := make([]*State, 0, DeckSize)
	for i := range d.cards {
		all = append(all, d.cards[i][:]...)
	}
	return all
}

// Undealt 返回所有未发出的牌，顺序同 All
func (d *Deck) Undealt() []*State {
	return d.filter(NotDealt)
}

// Discarded 返回所有已弃的牌
func (d *Deck) Discarded() []*State {
	return d.filter(Discarded)
}

func (d *Deck) filter(loc Location) []*State {
	var result []*State
	for i := range d.cards {
		for _, s := range d.cards[i] {
			if s.loc == loc {
				result = append(result, s)
			}
		}
	}
	return result
}

// Copy 深拷贝牌堆。牌面上的牌在副本中没有表现层句柄，rank 不复制。
func (d *Deck) Copy() *Deck {
	nd := NewDeck()
	for _, s := range d.All() {
		ns := nd.cards[s.Color][s.Number-1]
		switch s.loc {
		case OnBoard:
			ns.Deal(nil)
		case Discarded:
			ns.loc = Discarded
		}
	}
	return nd
}

// Shuffled 返回打乱顺序的 24 张牌身份，用于模拟发牌
func Shuffled(r *rand.Rand) []Card {
	cards := make([]Card, 0, DeckSize)
	for _, c := range Colors {
		for n := MinNumber; n <= MaxNumber; n++ {
			cards = append(cards, New(c, n))
		}
	}
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
