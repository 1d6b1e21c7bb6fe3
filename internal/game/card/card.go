package card

import (
	"fmt"
	"strconv"
)

// Color 定义牌的颜色
type Color int

const (
	Red Color = iota
	Blue
	Gold
)

// Colors 按固定顺序列出所有颜色，遍历牌堆时以此为准
var Colors = [...]Color{Red, Blue, Gold}

// colorNames 颜色名称映射表
var colorNames = map[Color]string{
	Red:  "RED",
	Blue: "BLUE",
	Gold: "GOLD",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "Color(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is one of the three deck colors.
func (c Color) Valid() bool {
	return c >= Red && c <= Gold
}

const (
	MinNumber = 1
	MaxNumber = 8
	// DeckSize 3 种颜色 × 8 个点数
	DeckSize = len(Colors) * MaxNumber
)

// Location 定义一张牌当前所在的位置
type Location int

const (
	NotDealt Location = iota
	OnBoard
	Discarded
)

var locationNames = map[Location]string{
	NotDealt:  "NOT_DEALT",
	OnBoard:   "ON_BOARD",
	Discarded: "DISCARDED",
}

func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return "Location(" + strconv.Itoa(int(l)) + ")"
}

// Card 一张牌的身份：颜色和点数相同即为同一张牌
type Card struct {
	Color  Color
	Number int
}

// New 创建一张牌的身份值
func New(c Color, n int) Card {
	return Card{Color: c, Number: n}
}

// Key 返回 color*10 + number，在 24 张牌中唯一
func (c Card) Key() int {
	return int(c.Color)*10 + c.Number
}

// Valid reports whether the card exists in a standard deck.
func (c Card) Valid() bool {
	return c.Color.Valid() && c.Number >= MinNumber && c.Number <= MaxNumber
}

func (c Card) String() string {
	return fmt.Sprintf("%s %d", c.Color, c.Number)
}

// Handle 表现层句柄，引擎只通过它转发建议和重置信号
type Handle interface {
	SuggestPlay()
	SuggestRemove()
	Reset()
}

// State 牌堆中一张牌的可变状态
type State struct {
	Card

	loc    Location
	rank   float32 // 仅在牌面上时有效
	handle Handle
}

func newState(c Card) *State {
	return &State{Card: c, loc: NotDealt}
}

func (s *State) Location() Location { return s.loc }
func (s *State) Rank() float32      { return s.rank }
func (s *State) SetRank(r float32)  { s.rank = r }

// Deal 把牌放到牌面上，h 可以为 nil
func (s *State) Deal(h Handle) {
	s.loc = OnBoard
	s.handle = h
}

// Discard 弃牌，并通知表现层重置
func (s *State) Discard() {
	s.loc = Discarded
	if s.handle != nil {
		s.handle.Reset()
	}
}

// SuggestPlay 建议把这张牌作为出牌的一部分
func (s *State) SuggestPlay() {
	if s.handle != nil {
		s.handle.SuggestPlay()
	}
}

// SuggestRemove 建议弃掉这张牌
func (s *State) SuggestRemove() {
	if s.handle != nil {
		s.handle.SuggestRemove()
	}
}
