package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/cfg"
	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/contrib"
	"github.com/utopian-io/utbot/app/database"
	"github.com/utopian-io/utbot/app/notify"
	"github.com/utopian-io/utbot/app/steem"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler owns the work queues: dispatcher workers drain the command
// queue as items arrive, a polling goroutine fetches reviewed
// contributions on a slow cadence, and a paced goroutine delivers one
// contribution notification per tick. The freshness state is owned by
// the polling goroutine alone; nothing else reads or writes it.
type Scheduler struct {
	parser           *command.Parser
	spec             *categories.Spec
	messages         *notify.Messages
	builder          *notify.EmbedBuilder
	notifier         ReplyNotifierInterface
	sink             ChatSinkInterface
	contribFetcher   ContributionFetcherInterface
	watermarkRepo    database.WatermarkRepository
	notificationRepo database.NotificationRepository

	tasksWebhookURL         string
	contributionsWebhookURL string
	uiBaseURL               string

	workerCount    int
	pollInterval   time.Duration
	notifyInterval time.Duration

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
	contribQueue chan TaskInterface
}

func NewScheduler(parser *command.Parser, spec *categories.Spec, messages *notify.Messages,
	builder *notify.EmbedBuilder, notifier ReplyNotifierInterface, sink ChatSinkInterface,
	contribFetcher ContributionFetcherInterface, watermarkRepo database.WatermarkRepository,
	notificationRepo database.NotificationRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		parser:                  parser,
		spec:                    spec,
		messages:                messages,
		builder:                 builder,
		notifier:                notifier,
		sink:                    sink,
		contribFetcher:          contribFetcher,
		watermarkRepo:           watermarkRepo,
		notificationRepo:        notificationRepo,
		tasksWebhookURL:         c.TasksWebhookURL,
		contributionsWebhookURL: c.ContributionsWebhookURL,
		uiBaseURL:               c.UIBaseURL,
		workerCount:             c.WorkerCount,
		pollInterval:            time.Duration(c.PollInterval) * time.Second,
		notifyInterval:          time.Duration(c.NotifyInterval) * time.Second,
		ctx:                     ctx,
		cancel:                  cancel,
		taskQueue:               make(chan TaskInterface, 300),
		contribQueue:            make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if s.contribFetcher != nil && s.contributionsWebhookURL != "" {
		s.wg.Add(1)
		go s.pollContributions()

		s.wg.Add(1)
		go s.notifyContributions()
	}
}

// Stop cancels the workers and waits them out. The queues stay open:
// the ingestion loop outlives the WaitGroup, so a late enqueue must
// fail with the context error rather than race a close.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueComment wraps a matched (reply, root) pair into a dispatcher
// task. Called by the ingestion loop.
func (s *Scheduler) EnqueueComment(reply, root *steem.Comment) error {
	task := NewProcessCommandTask(reply, root, s.parser, s.spec, s.messages, s.builder,
		s.notifier, s.sink, s.notificationRepo, s.tasksWebhookURL, s.uiBaseURL)
	return s.EnqueueTask(task)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// executeTask runs a task exactly once. Every dequeue completes here
// regardless of outcome, so the queue can never starve on a bad item.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "ref", task.GetRef(), "error", err)
	}
}

// pollContributions owns the freshness state for the contribution
// pipeline. It restores persisted watermarks once, then on every tick
// fetches the current review batch, filters it against the state, and
// queues the fresh records for paced delivery.
func (s *Scheduler) pollContributions() {
	defer s.wg.Done()

	state := s.restoreState()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	state = s.pollOnce(state)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			state = s.pollOnce(state)
		}
	}
}

func (s *Scheduler) restoreState() contrib.State {
	state := contrib.NewState(time.Now().UTC())

	if s.watermarkRepo == nil {
		return state
	}

	watermarks, err := s.watermarkRepo.GetAllWatermarks()
	if err != nil {
		slog.Error("Failed to load watermarks, starting from now", "error", err)
		return state
	}

	for _, w := range watermarks {
		state = state.Restore(w.Author, w.Permlink, w.ReviewedAt)
	}

	slog.Info("Restored contribution watermarks", "count", state.Size())
	return state
}

func (s *Scheduler) pollOnce(state contrib.State) contrib.State {
	batch, err := s.contribFetcher.FetchReviewed(s.ctx)
	if err != nil {
		slog.Error("Failed to fetch reviewed contributions", "error", err)
		return state
	}

	fresh, next := contrib.Filter(state, batch, s.spec.IsTaskCategory)
	slog.Info("Fetched reviewed contributions", "total", len(batch), "new", len(fresh))

	for _, c := range fresh {
		if s.watermarkRepo != nil {
			author, permlink := c.AuthorPerm()
			reviewedAt, _ := c.ReviewedAt()
			if err := s.watermarkRepo.UpsertWatermark(author, permlink, reviewedAt); err != nil {
				slog.Warn("Failed to persist watermark", "url", c.URL, "error", err)
			}
		}

		task := NewNotifyContributionTask(c, s.builder, s.sink, s.notificationRepo, s.contributionsWebhookURL)
		select {
		case s.contribQueue <- task:
		default:
			slog.Warn("Contribution queue is full, dropping", "url", c.URL)
		}
	}

	return next
}

// notifyContributions paces deliveries: at most one notification per
// tick, so a large review batch does not burst into the chat sink. An
// empty queue yields the tick.
func (s *Scheduler) notifyContributions() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.notifyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			select {
			case task := <-s.contribQueue:
				s.executeTask(-1, task)
			default:
			}
		}
	}
}
