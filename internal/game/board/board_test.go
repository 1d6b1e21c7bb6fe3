package board

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/greenlight/internal/apperrors"
	"github.com/palemoky/greenlight/internal/game/card"
)

var (
	r1 = card.New(card.Red, 1)
	r2 = card.New(card.Red, 2)
	r3 = card.New(card.Red, 3)
	r5 = card.New(card.Red, 5)
	r7 = card.New(card.Red, 7)
	r8 = card.New(card.Red, 8)
	b1 = card.New(card.Blue, 1)
	b2 = card.New(card.Blue, 2)
	b3 = card.New(card.Blue, 3)
	b4 = card.New(card.Blue, 4)
	b5 = card.New(card.Blue, 5)
	b6 = card.New(card.Blue, 6)
	b7 = card.New(card.Blue, 7)
	b8 = card.New(card.Blue, 8)
	g2 = card.New(card.Gold, 2)
	g4 = card.New(card.Gold, 4)
	g5 = card.New(card.Gold, 5)
	g6 = card.New(card.Gold, 6)
	g7 = card.New(card.Gold, 7)
	g8 = card.New(card.Gold, 8)
)

// fixture 构造牌面：onBoard 发到牌面上，undealt 留在牌堆中，其余全部弃掉
func fixture(t *testing.T, onBoard, undealt []card.Card) *Board {
	t.Helper()
	d := card.NewDeck()
	keep := make(map[card.Card]bool)
	for _, c := range onBoard {
		keep[c] = true
	}
	for _, c := range undealt {
		keep[c] = true
	}
	for _, s := range d.All() {
		if !keep[s.Card] {
			s.Discard()
		}
	}
	b := New(d)
	require.NoError(t, b.Deal(onBoard...))
	return b
}

// endgame 最佳出牌为弃牌，牌堆中剩 2 张牌
func endgame(t *testing.T) *Board {
	return fixture(t, []card.Card{r1, b3, g5, r7, b8}, []card.Card{g2, g6})
}

func locations(d *card.Deck) map[card.Card]card.Location {
	m := make(map[card.Card]card.Location)
	for _, s := range d.All() {
		m[s.Card] = s.Location()
	}
	return m
}

func TestDeal(t *testing.T) {
	t.Parallel()

	b := New(card.NewDeck())
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.BestPlay())

	require.NoError(t, b.Deal(r1, r2))
	require.NoError(t, b.DealWithHandle(r3, nil))
	_, err := b.Suggest()
	assert.ErrorIs(t, err, apperrors.ErrBoardIncomplete)
	assert.Equal(t, 3, b.Len())
	assert.False(t, b.IsComplete())
	assert.Equal(t, card.DeckSize-3, b.Undealt())

	require.NoError(t, b.Deal(b4, g8))
	assert.True(t, b.IsComplete())
	assert.Equal(t, "RED 1 : RED 2 : RED 3 : BLUE 4 : GOLD 8", b.String())
	p, err := b.Suggest()
	require.NoError(t, err)
	assert.Same(t, b.BestPlay(), p)

	for _, s := range b.Cards() {
		assert.Equal(t, card.OnBoard, s.Location())
	}
}

func TestDeal_Errors(t *testing.T) {
	t.Parallel()

	t.Run("sixth card", func(t *testing.T) {
		t.Parallel()
		b := New(card.NewDeck())
		require.NoError(t, b.Deal(r1, r2, r3, b4, g8))
		assert.ErrorIs(t, b.Deal(b1), apperrors.ErrBoardFull)
		assert.ErrorIs(t, b.DealWithHandle(b1, nil), apperrors.ErrBoardFull)
		assert.Equal(t, 5, b.Len())
	})

	t.Run("too many at once", func(t *testing.T) {
		t.Parallel()
		b := New(card.NewDeck())
		require.NoError(t, b.Deal(r1, r2, r3))
		assert.ErrorIs(t, b.Deal(b1, b2, b3), apperrors.ErrBoardFull)
		assert.Equal(t, 3, b.Len())
	})

	t.Run("nonexistent card", func(t *testing.T) {
		t.Parallel()
		b := New(card.NewDeck())
		assert.ErrorIs(t, b.Deal(card.New(card.Red, 9)), apperrors.ErrCardNotFound)
	})

	t.Run("card dealt twice", func(t *testing.T) {
		t.Parallel()
		b := New(card.NewDeck())
		require.NoError(t, b.Deal(r1))
		assert.ErrorIs(t, b.Deal(r1), apperrors.ErrCardUnavailable)
	})

	t.Run("failed deal places nothing", func(t *testing.T) {
		t.Parallel()
		d := card.NewDeck()
		b := New(d)
		assert.Error(t, b.Deal(r1, r2, card.New(card.Gold, 0)))
		assert.Equal(t, 0, b.Len())
		assert.Equal(t, card.NotDealt, d.MustCardAt(card.Red, 1).Location())
	})
}

func TestNextTurn_DropsDiscards(t *testing.T) {
	t.Parallel()

	d := card.NewDeck()
	b := New(d)
	require.NoError(t, b.Deal(r1, r2, r3, b4, g8))

	best := b.BestPlay()
	require.NotNil(t, best)
	for _, s := range best.Cards() {
		s.Discard()
	}

	next := NextTurn(b, 50)
	assert.Equal(t, 50, next.CurrentScore())
	assert.Equal(t, 2, next.Len())
	assert.Equal(t, "BLUE 4 : GOLD 8", next.String())
	for _, s := range next.Cards() {
		assert.NotEqual(t, card.Discarded, s.Location())
		assert.Same(t, d.MustCardAt(s.Color, s.Number), s, "turn advance shares the deck")
	}

	require.NoError(t, next.Deal(b1))
	assert.Equal(t, 5, b.Len(), "previous board is untouched")
}

func TestBestPlay_HighestScoringHand(t *testing.T) {
	t.Parallel()

	b := New(card.NewDeck())
	require.NoError(t, b.Deal(r1, r2, r3, b4, g8))

	best := b.BestPlay()
	require.NotNil(t, best)
	assert.False(t, best.IsRemoval())
	assert.Equal(t, 50, best.Score())
	assert.Equal(t, "RED 1 : RED 2 : RED 3", best.String())

	for _, p := range b.ValidPlays() {
		assert.LessOrEqual(t, p.Score(), best.Score())
		assert.True(t, p.IsValid())
	}
}

func TestBestPlay_Memoized(t *testing.T) {
	t.Parallel()

	b := New(card.NewDeck())
	require.NoError(t, b.Deal(r1, r2, r3, b4, g8))

	first := b.BestPlay()
	second := b.BestPlay()
	assert.Same(t, first, second)
	assert.Equal(t, first.Score(), second.Score())
}

func TestBestPlay_RemovesLowestRank(t *testing.T) {
	t.Parallel()

	b := endgame(t)
	best := b.BestPlay()
	require.NotNil(t, best)
	require.True(t, best.IsRemoval())
	assert.Equal(t, 0, best.Score())

	// RED 1 和 BLUE 3 的 rank 相同，按发牌顺序取第一张
	cards := best.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, r1, cards[0].Card)
	assert.Equal(t, "RED 1 : BLUE 3 : GOLD 5 : RED 7 : BLUE 8", b.String(), "ranking does not reorder the board")

	ranks := make(map[card.Card]float32)
	for _, s := range b.Cards() {
		ranks[s.Card] = s.Rank()
	}
	assert.Equal(t, ranks[r1], ranks[b3])
	assert.InDelta(t, 20.0/9, ranks[r1], 1e-5)
	assert.InDelta(t, 100.0/9, ranks[g5], 1e-5)
	assert.InDelta(t, 110.0/9, ranks[r7], 1e-5)
	assert.InDelta(t, 40.0/3, ranks[b8], 1e-5)
}

func TestRankCards_NoCandidatePlays(t *testing.T) {
	t.Parallel()

	b := fixture(t, []card.Card{r1, b5}, nil)
	best := b.BestPlay()
	require.NotNil(t, best)
	assert.True(t, best.IsRemoval())

	for _, s := range b.Cards() {
		assert.False(t, math.IsNaN(float64(s.Rank())))
		assert.Equal(t, float32(0), s.Rank())
	}
}

func TestKeyAndHash(t *testing.T) {
	t.Parallel()

	a := endgame(t)
	b := endgame(t)
	assert.Equal(t, a.Key(40), b.Key(40))
	assert.NotEqual(t, a.Key(40), a.Key(50))

	c := fixture(t, []card.Card{b3, r1, g5, r7, b8}, []card.Card{g2, g6})
	assert.NotEqual(t, a.Key(0), c.Key(0), "order on the board is part of the key")

	// 牌堆大小 × 最佳出牌得分
	assert.Equal(t, 0, a.Hash())
	full := New(card.NewDeck())
	require.NoError(t, full.Deal(r1, r2, r3, b4, g8))
	assert.Equal(t, card.DeckSize*50, full.Hash())
	assert.Equal(t, 0, New(card.NewDeck()).Hash())
}

func TestSnapshot_IsIndependent(t *testing.T) {
	t.Parallel()

	b := endgame(t)
	before := locations(b.deck)

	s := b.Snapshot()
	assert.Equal(t, b.String(), s.String())
	assert.Equal(t, b.Key(0), s.Key(0))

	require.NoError(t, s.Deal())
	s.cards[0].Discard()
	assert.Equal(t, before, locations(b.deck))
}
