package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"flowScope/internal/model"
)

// DefaultInterval matches the indexer refresh cadence.
const DefaultInterval = 10 * time.Second

// Update is one poll result. Err is set when the poll failed.
type Update struct {
	Seq   uint64
	State model.AccountState
	Err   error
}

// Poller polls a Source on a fixed schedule and fans results out to
// subscribers. The most recent poll wins: results that finish after a newer
// poll has been published are dropped, and a slow subscriber only ever sees
// the newest pending update.
type Poller struct {
	source   Source
	interval time.Duration
	schedule string
	logger   *zap.Logger

	cron   *cron.Cron
	cancel context.CancelFunc
	issued atomic.Uint64

	mu      sync.Mutex
	applied uint64
	latest  *Update
	subs    map[uint64]chan Update
	nextSub uint64
	stopped bool
}

func NewPoller(source Source, interval time.Duration, logger *zap.Logger) (*Poller, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < time.Second {
		return nil, fmt.Errorf("poll interval must be at least 1s")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:   source,
		interval: interval,
		schedule: fmt.Sprintf("@every %s", interval),
		logger:   logger,
		subs:     make(map[uint64]chan Update),
	}, nil
}

// Start polls once immediately and then on every interval until Stop or ctx ends.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cron != nil || p.stopped {
		p.mu.Unlock()
		return fmt.Errorf("poller already started")
	}
	pollCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(p.schedule, func() { p.Poll(pollCtx) }); err != nil {
		cancel()
		p.mu.Unlock()
		return fmt.Errorf("schedule poll: %w", err)
	}
	p.cancel, p.cron = cancel, c
	p.mu.Unlock()

	p.logger.Info("poller start", zap.Duration("interval", p.interval))
	go p.Poll(pollCtx)
	c.Start()
	return nil
}

// Stop ends scheduling, waits for a running poll and closes all subscriptions.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	c := p.cron
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}

	p.mu.Lock()
	for id, ch := range p.subs {
		close(ch)
		delete(p.subs, id)
	}
	p.mu.Unlock()
	p.logger.Info("poller stopped")
}

// Subscribe returns a channel of updates and a function that ends the
// subscription. The latest successful update, if any, is delivered first.
func (p *Poller) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	if p.latest != nil {
		ch <- *p.latest
	}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			if sub, ok := p.subs[id]; ok {
				close(sub)
				delete(p.subs, id)
			}
			p.mu.Unlock()
		})
	}
}

// Latest returns the most recent successful update.
func (p *Poller) Latest() (Update, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return Update{}, false
	}
	return *p.latest, true
}

// Poll fetches once and publishes the result.
func (p *Poller) Poll(ctx context.Context) {
	seq := p.issued.Add(1)
	state, err := p.source.Fetch(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Warn("poll failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	p.publish(Update{Seq: seq, State: state, Err: err})
}

func (p *Poller) publish(u Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	if u.Seq <= p.applied {
		p.logger.Debug("drop stale poll", zap.Uint64("seq", u.Seq), zap.Uint64("applied", p.applied))
		return
	}
	if u.Err == nil {
		p.applied = u.Seq
		latest := u
		p.latest = &latest
	}

	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}
