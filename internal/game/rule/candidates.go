package rule

import "github.com/palemoky/greenlight/internal/game/card"

// CandidatePlays 返回牌堆中所有包含 s 且能得分的三张牌组合，按发现顺序去重。
// 候选牌为牌堆中未弃的牌（未发出的和牌面上的）。
func CandidatePlays(d *card.Deck, s *card.State) []*Play {
	var pool []*card.State
	for _, c := range d.All() {
		if c.Location() != card.Discarded && c.Card != s.Card {
			pool = append(pool, c)
		}
	}

	var plays []*Play
	seen := make(map[string]struct{})
	for i, c1 := range pool {
		for _, c2 := range pool[i+1:] {
			p := NewHand(s, c1, c2)
			if p.Score() <= 0 {
				continue
			}
			key := p.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			plays = append(plays, p)
		}
	}
	return plays
}

// OnBoardCount 统计出牌中有几张牌正在牌面上
func OnBoardCount(p *Play) int {
	n := 0
	for _, c := range p.cards {
		if c.Location() == card.OnBoard {
			n++
		}
	}
	return n
}
