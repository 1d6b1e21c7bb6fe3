package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	gameRecordKey    = "greenlight:game:"
	resultStatsKey   = "greenlight:stats"
	leaderboardKey   = "greenlight:leaderboard:score"
	dailyLeaderboard = "greenlight:leaderboard:daily:"
)

// GameRecord 一局模拟的记录
type GameRecord struct {
	GameID        string `json:"game_id"`
	Seed          uint64 `json:"seed"`
	Turns         int    `json:"turns"`
	Score         int    `json:"score"`
	MaxAchievable int    `json:"max_achievable"` // -1 表示没有算出来
	Target        int    `json:"target"`
	PlayedAt      int64  `json:"played_at"`
}

// ReachedTarget 得分达到目标分
func (r *GameRecord) ReachedTarget() bool {
	return r.Score >= r.Target
}

// ResultStats 所有已记录对局的汇总
type ResultStats struct {
	TotalGames    int `json:"total_games"`
	TargetReached int `json:"target_reached"`
	BestScore     int `json:"best_score"`
	TotalScore    int `json:"total_score"`

	// 正数为连续达标，负数为连续未达标
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
}

// AverageScore 平均得分
func (s *ResultStats) AverageScore() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.TotalGames)
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	GameID        string `json:"game_id"`
	Score         int    `json:"score"`
	Turns         int    `json:"turns"`
	MaxAchievable int    `json:"max_achievable"`
}

// ResultStore 在 Redis 中保存模拟对局的结果和排行榜
type ResultStore struct {
	redis *redis.Client
	now   func() time.Time
}

// NewResultStore 创建结果存储
func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{redis: client, now: time.Now}
}

// Record 保存一局的结果，并更新汇总和排行榜
func (rs *ResultStore) Record(ctx context.Context, rec *GameRecord) error {
	if rec.PlayedAt == 0 {
		rec.PlayedAt = rs.now().Unix()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := rs.redis.Set(ctx, gameRecordKey+rec.GameID, data, 0).Err(); err != nil {
		return fmt.Errorf("保存对局记录失败: %w", err)
	}

	stats, err := rs.Stats(ctx)
	if err != nil {
		return err
	}
	updateStats(stats, rec)
	data, err = json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := rs.redis.Set(ctx, resultStatsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("保存汇总失败: %w", err)
	}

	return rs.updateLeaderboard(ctx, rec)
}

// updateStats 累加一局的结果并更新连续达标
func updateStats(stats *ResultStats, rec *GameRecord) {
	stats.TotalGames++
	stats.TotalScore += rec.Score
	stats.BestScore = max(stats.BestScore, rec.Score)
	stats.LastPlayedAt = rec.PlayedAt

	if rec.ReachedTarget() {
		stats.TargetReached++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	if stats.CurrentStreak > stats.MaxStreak {
		stats.MaxStreak = stats.CurrentStreak
	}
}

func (rs *ResultStore) updateLeaderboard(ctx context.Context, rec *GameRecord) error {
	member := redis.Z{Score: float64(rec.Score), Member: rec.GameID}
	if err := rs.redis.ZAdd(ctx, leaderboardKey, member).Err(); err != nil {
		return err
	}

	dailyKey := dailyLeaderboard + time.Unix(rec.PlayedAt, 0).UTC().Format("2006-01-02")
	if err := rs.redis.ZAdd(ctx, dailyKey, member).Err(); err != nil {
		return err
	}
	// 设置过期时间（2天）
	return rs.redis.Expire(ctx, dailyKey, 48*time.Hour).Err()
}

// Game 读取一局的记录，不存在时返回 nil
func (rs *ResultStore) Game(ctx context.Context, gameID string) (*GameRecord, error) {
	data, err := rs.redis.Get(ctx, gameRecordKey+gameID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var rec GameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Stats 读取汇总，还没有记录时返回零值
func (rs *ResultStore) Stats(ctx context.Context) (*ResultStats, error) {
	data, err := rs.redis.Get(ctx, resultStatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &ResultStats{}, nil
		}
		return nil, err
	}

	var stats ResultStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Top 得分最高的 limit 局（从高到低）
func (rs *ResultStore) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	results, err := rs.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		gameID, ok := result.Member.(string)
		if !ok {
			continue
		}
		entry := LeaderboardEntry{Rank: i + 1, GameID: gameID, Score: int(result.Score)}
		if rec, err := rs.Game(ctx, gameID); err == nil && rec != nil {
			entry.Turns = rec.Turns
			entry.MaxAchievable = rec.MaxAchievable
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Rank 一局在总排行榜上的名次，未上榜返回 -1
func (rs *ResultStore) Rank(ctx context.Context, gameID string) (int64, error) {
	rank, err := rs.redis.ZRevRank(ctx, leaderboardKey, gameID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}

// Close 关闭连接
func (rs *ResultStore) Close() error {
	return rs.redis.Close()
}
