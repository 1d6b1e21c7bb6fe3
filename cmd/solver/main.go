package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/palemoky/greenlight/internal/config"
	"github.com/palemoky/greenlight/internal/game"
	"github.com/palemoky/greenlight/internal/game/card"
	"github.com/palemoky/greenlight/internal/game/event"
	"github.com/palemoky/greenlight/internal/logger"
	"github.com/palemoky/greenlight/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	games := flag.Int("games", 0, "模拟局数，覆盖配置文件")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}
	if *games > 0 {
		cfg.Simulation.Games = *games
	}

	if err := logger.Init(cfg.Log.Dir); err != nil {
		log.Printf("初始化日志失败，输出到终端: %v", err)
	}
	defer logger.Close()
	logger.SetDebug(cfg.Log.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := storage.NewResultCache(ctx, cfg)
	if err != nil {
		logger.LogError("创建搜索缓存失败，不使用缓存: %v", err)
	}

	var results *storage.ResultStore
	if cfg.Simulation.Record {
		client, err := storage.Connect(ctx, &cfg.Redis)
		if err != nil {
			logger.LogError("连接排行榜失败，不记录结果: %v", err)
		} else {
			results = storage.NewResultStore(client)
			defer results.Close()
		}
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := rand.New(rand.NewPCG(seed, seed))
	logger.LogInfo("simulating %d games with seed %d", cfg.Simulation.Games, seed)

	ctrl := game.NewController(cfg, game.WithCache(cache))
	defer ctrl.Close()
	ctrl.Subscribe(event.ObserverFunc(func(u event.ScoreUpdate) {
		switch {
		case u.Computing():
			logger.LogDebug("score %d, highest achievable: calculating...", u.Score)
		case u.Known():
			logger.LogDebug("score %d, highest achievable: %d", u.Score, u.MaxAchievable)
		default:
			logger.LogDebug("score %d, highest achievable: unknown", u.Score)
		}
	}))

	for i := range cfg.Simulation.Games {
		if ctx.Err() != nil {
			fmt.Println("模拟已中断")
			return
		}
		if i > 0 {
			ctrl.Reset()
		}
		res, err := game.Simulate(ctrl, card.Shuffled(r))
		if err != nil {
			logger.LogError("game %s failed: %v", res.GameID, err)
			fmt.Fprintf(os.Stderr, "第 %d 局模拟失败: %v\n", i+1, err)
			return
		}
		status := ""
		if ctrl.BelowTarget() {
			status = " (below target)"
		}
		fmt.Printf("game %d [%s]: %d turns, score %d, highest achievable %d%s\n",
			i+1, res.GameID, res.Turns, res.Score, res.MaxAchievable, status)
		logger.LogInfo("game %s finished: score %d, max %d", res.GameID, res.Score, res.MaxAchievable)

		if results != nil {
			rec := &storage.GameRecord{
				GameID:        res.GameID,
				Seed:          seed,
				Turns:         res.Turns,
				Score:         res.Score,
				MaxAchievable: res.MaxAchievable,
				Target:        cfg.Game.TargetScore,
			}
			if err := results.Record(ctx, rec); err != nil {
				logger.LogError("game %s: record result failed: %v", res.GameID, err)
			}
		}
	}

	if results != nil {
		printSummary(ctx, results)
	}
}

func printSummary(ctx context.Context, results *storage.ResultStore) {
	stats, err := results.Stats(ctx)
	if err != nil {
		logger.LogError("read stats failed: %v", err)
		return
	}
	fmt.Printf("recorded games: %d, reached target: %d, best %d, average %.1f\n",
		stats.TotalGames, stats.TargetReached, stats.BestScore, stats.AverageScore())

	top, err := results.Top(ctx, 5)
	if err != nil {
		logger.LogError("read leaderboard failed: %v", err)
		return
	}
	for _, e := range top {
		fmt.Printf("%2d. %s  score %d (%d turns, highest achievable %d)\n", e.Rank, e.GameID, e.Score, e.Turns, e.MaxAchievable)
	}
}
