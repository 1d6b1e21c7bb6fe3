// Package game 回合控制器：持有当前牌面和牌堆，给出出牌建议，提交出牌，并广播分数更新。
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/greenlight/internal/apperrors"
	"github.com/palemoky/greenlight/internal/config"
	"github.com/palemoky/greenlight/internal/game/board"
	"github.com/palemoky/greenlight/internal/game/card"
	"github.com/palemoky/greenlight/internal/game/event"
	"github.com/palemoky/greenlight/internal/game/rule"
	"github.com/palemoky/greenlight/internal/logger"
	"github.com/palemoky/greenlight/internal/storage"
)

// Searcher 计算从某个牌面出发可达到的最高分
type Searcher interface {
	MaxAchievable(ctx context.Context, b *board.Board, base int) (int, bool, error)
}

// Option 控制器选项
type Option func(*Controller)

// WithCache 使用搜索结果缓存
func WithCache(cache storage.ResultCache) Option {
	return func(c *Controller) { c.cache = cache }
}

// WithSearcher 替换默认的并行搜索器
func WithSearcher(s Searcher) Option {
	return func(c *Controller) { c.searcher = s }
}

// searchJob 一次搜索的输入快照
type searchJob struct {
	snapshot *board.Board
	base     int
	key      string
	game     uint64
	seq      uint64
}

// Controller 回合控制器。牌面和牌堆只归控制器所有，搜索只读取快照。
// 表现层句柄和订阅者的回调中不要再调用 Controller 的方法。
type Controller struct {
	cfg      config.SearchConfig
	policy   board.Policy
	target   int
	bus      *event.Bus
	cache    storage.ResultCache
	searcher Searcher

	id         string
	deck       *card.Deck
	board      *board.Board
	score      int
	maxScore   int
	suggested  *rule.Play
	gameGen    uint64
	searchSeq  uint64
	appliedSeq uint64
	running    int // 本局还没写回的搜索数

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	pubMu  sync.Mutex
}

// NewController 创建控制器并开始新的一局
func NewController(cfg *config.Config, opts ...Option) *Controller {
	policy := board.Policy{
		RemovalThreshold: cfg.Search.RemovalThreshold,
		PlayThreshold:    cfg.Search.PlayThreshold,
	}
	c := &Controller{
		cfg:      cfg.Search,
		policy:   policy,
		target:   cfg.Game.TargetScore,
		bus:      event.NewBus(),
		searcher: board.NewSearcher(policy, cfg.Search.Workers),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.newGame()
	return c
}

// newGame 调用方需持有锁或处于构造阶段
func (c *Controller) newGame() {
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.id = uuid.NewString()
	c.deck = card.NewDeck()
	c.board = board.New(c.deck)
	c.score = 0
	c.maxScore = event.MaxUnknown
	c.suggested = nil
	c.running = 0
	c.gameGen++
}

// Subscribe 注册分数订阅者
func (c *Controller) Subscribe(o event.Observer) string {
	return c.bus.Subscribe(o)
}

// Unsubscribe 取消订阅
func (c *Controller) Unsubscribe(id string) bool {
	return c.bus.Unsubscribe(id)
}

// CardAdded 发一张牌到牌面。牌面凑满后返回建议的出牌，否则返回 nil。
func (c *Controller) CardAdded(cd card.Card, h card.Handle) (*rule.Play, error) {
	c.mu.Lock()
	if err := c.board.DealWithHandle(cd, h); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("发牌失败: %w", err)
	}
	best, err := c.board.Suggest()
	if err != nil {
		// 牌面还没凑满
		c.mu.Unlock()
		return nil, nil
	}
	c.suggested = best
	job := c.prepareSearch()
	logger.LogDebug("game %s: board [%s] suggests %s [%s] (score %d)", c.id, c.board, best.Type(), best, best.Score())
	c.mu.Unlock()

	// 有搜索在跑时这次广播的是 MaxComputing
	c.publish()
	if job != nil {
		if c.cfg.Async {
			go c.searchAsync(job)
		} else {
			c.finish(job)
			c.publish()
		}
	}

	suggest(best)
	return best, nil
}

// suggest 通知表现层高亮建议的牌
func suggest(p *rule.Play) {
	for _, s := range p.Cards() {
		if p.IsRemoval() {
			s.SuggestRemove()
		} else {
			s.SuggestPlay()
		}
	}
}

// prepareSearch 门限允许时生成搜索任务，需持有锁
func (c *Controller) prepareSearch() *searchJob {
	if !c.policy.Allows(c.board) {
		return nil
	}
	c.searchSeq++
	c.running++
	if c.cfg.Async {
		c.wg.Add(1)
	}
	return &searchJob{
		snapshot: c.board.Snapshot(),
		base:     c.score,
		key:      c.board.Key(c.score),
		game:     c.gameGen,
		seq:      c.searchSeq,
	}
}

func (c *Controller) searchAsync(job *searchJob) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()
	if c.finish(job) {
		c.publish()
	}
}

// finish 执行搜索并写回结果；对局已经重开时返回 false
func (c *Controller) finish(job *searchJob) bool {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	best, ok := c.search(ctx, job)

	c.mu.Lock()
	defer c.mu.Unlock()
	if job.game != c.gameGen {
		logger.LogInfo("dropping search result of a finished game (seq %d, game %d)", job.seq, job.game)
		return false
	}
	c.running--
	if job.seq < c.appliedSeq {
		logger.LogInfo("dropping superseded search result (seq %d, applied %d)", job.seq, c.appliedSeq)
		return true
	}
	c.appliedSeq = job.seq
	if ok {
		c.maxScore = best
	}
	return true
}

// search 先查缓存，再调用搜索器
func (c *Controller) search(parent context.Context, job *searchJob) (int, bool) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.TimeoutDuration())
	defer cancel()

	if c.cache != nil {
		score, ok, err := c.cache.Get(ctx, job.key)
		if err != nil {
			logger.LogError("search cache get failed: %v", err)
		} else if ok {
			logger.LogDebug("search cache hit for %s: %d", job.key, score)
			return score, true
		}
	}

	start := time.Now()
	best, ok, err := c.searcher.MaxAchievable(ctx, job.snapshot, job.base)
	if err != nil {
		logger.LogError("search failed after %v: %v", time.Since(start), err)
		return 0, false
	}
	logger.LogInfo("search finished in %v: max=%d found=%v", time.Since(start), best, ok)

	if ok && c.cache != nil {
		if err := c.cache.Set(ctx, job.key, best); err != nil {
			logger.LogError("search cache set failed: %v", err)
		}
	}
	return best, ok
}

// Play 执行建议的出牌：弃掉这些牌，计分，并开始下一回合
func (c *Controller) Play() error {
	c.mu.Lock()
	if c.suggested == nil {
		c.mu.Unlock()
		return apperrors.ErrNoSuggestion
	}
	p := c.suggested
	for _, s := range p.Cards() {
		s.Discard()
	}
	if !p.IsRemoval() {
		c.score += p.Score()
	}
	c.board = board.NextTurn(c.board, c.score)
	c.suggested = nil
	logger.LogInfo("game %s: played %s [%s], score %d", c.id, p.Type(), p, c.score)
	c.mu.Unlock()

	c.publish()
	return nil
}

// Reset 开始新的一局，保留订阅者；进行中的搜索被取消
func (c *Controller) Reset() {
	c.mu.Lock()
	c.newGame()
	logger.LogInfo("game %s: new game", c.id)
	c.mu.Unlock()

	c.publish()
}

// Wait 等待后台搜索结束
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close 取消进行中的搜索并等待其退出
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// publish 读取状态和分发在同一把锁下完成，订阅者收到的顺序和状态变化的顺序一致
func (c *Controller) publish() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.bus.Publish(c.Update())
}

// Update 当前的分数和可达最高分；有搜索在跑时可达最高分为 event.MaxComputing
func (c *Controller) Update() event.ScoreUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := event.ScoreUpdate{Score: c.score, MaxAchievable: c.maxScore}
	if c.running > 0 {
		u.MaxAchievable = event.MaxComputing
	}
	return u
}

// ID 当前对局 ID
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Score 当前得分
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

// MaxAchievable 最近一次计算出的可达最高分，未计算时为 event.MaxUnknown
func (c *Controller) MaxAchievable() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxScore
}

// Suggested 待执行的建议出牌
func (c *Controller) Suggested() *rule.Play {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suggested
}

// Cards 牌面上的牌
func (c *Controller) Cards() []card.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	states := c.board.Cards()
	cards := make([]card.Card, len(states))
	for i, s := range states {
		cards[i] = s.Card
	}
	return cards
}

// Undealt 还未发出的牌数
func (c *Controller) Undealt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Undealt()
}

// GameOver 牌已发完且牌面凑不满
func (c *Controller) GameOver() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Undealt() == 0 && !c.board.IsComplete()
}

// BelowTarget 已知的可达最高分达不到目标分
func (c *Controller) BelowTarget() bool {
	return c.Update().BelowTarget(c.target)
}
