package game

import (
	"fmt"

	"github.com/palemoky/greenlight/internal/game/card"
)

// Result 一局模拟的结果
type Result struct {
	GameID        string
	Turns         int // 执行的出牌次数（含弃牌）
	Score         int
	MaxAchievable int
}

// Simulate 按给定顺序发牌，每次牌面凑满就执行建议的出牌，直到牌发完。
// 控制器应处于新局状态。
func Simulate(c *Controller, order []card.Card) (Result, error) {
	res := Result{GameID: c.ID()}
	for _, cd := range order {
		p, err := c.CardAdded(cd, nil)
		if err != nil {
			return res, fmt.Errorf("第 %d 回合: %w", res.Turns+1, err)
		}
		if p == nil {
			continue
		}
		if err := c.Play(); err != nil {
			return res, err
		}
		res.Turns++
	}
	c.Wait()

	res.Score = c.Score()
	res.MaxAchievable = c.MaxAchievable()
	return res, nil
}
