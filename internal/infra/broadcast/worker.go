// Package broadcast implements the durable broadcast dispatcher's worker and
// scheduler (C6-C8, §4.5): dequeue via the same conditional-update claim
// idiom as the assignment controller, bounded concurrency, pacing, template
// rendering, and media fetch with content-type sniffing.
package broadcast

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/domain/contact"
	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/domain/whatsapp"
	"whatsfleet/internal/infra/connmgr"
	"whatsfleet/pkg/logger"
)

// ManagerLookup resolves a device's live connection manager. Satisfied
// directly by *supervisor.Supervisor (structural interface matching — the
// worker never imports the supervisor package, only connmgr, so there is no
// import cycle); the worker only ever reads it, per §5's single-writer rule.
type ManagerLookup interface {
	ManagerFor(id device.ID) (*connmgr.Manager, bool)
}

const (
	mediaFetchAttempts = 3
	mediaFetchTimeout  = 10 * time.Second
	maxAttempts        = 3
)

var retryBackoffs = []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}

// Worker dequeues broadcast_jobs and drives one recipient at a time through
// the bound device's connection manager.
type Worker struct {
	serverID    string
	concurrency int64

	broadcasts broadcast.Repository
	queue      broadcast.QueueRepository
	contacts   contact.Repository
	devices    device.Repository
	managers   ManagerLookup
	httpClient *http.Client
	logger     logger.Logger

	sem *semaphore.Weighted
}

func NewWorker(
	serverID string,
	concurrency int,
	broadcasts broadcast.Repository,
	queue broadcast.QueueRepository,
	contacts contact.Repository,
	devices device.Repository,
	managers ManagerLookup,
	log logger.Logger,
) *Worker {
	return &Worker{
		serverID:    serverID,
		concurrency: int64(concurrency),
		broadcasts:  broadcasts,
		queue:       queue,
		contacts:    contacts,
		devices:     devices,
		managers:    managers,
		httpClient:  &http.Client{Timeout: mediaFetchTimeout},
		logger:      log,
		sem:         semaphore.NewWeighted(int64(concurrency)),
	}
}

// Poll attempts to claim and run one job, returning true if work was found.
// Called on its own short-interval ticker by the caller (e.g. the scheduler's
// cron, or a dedicated loop) so the semaphore throttles actual execution
// while polling itself stays cheap.
func (w *Worker) Poll(ctx context.Context) bool {
	if !w.sem.TryAcquire(1) {
		return false
	}

	job, ok, err := w.queue.Claim(ctx, w.serverID)
	if err != nil {
		w.sem.Release(1)
		w.logger.ErrorWithError("broadcast worker: claim failed", err, nil)
		return false
	}
	if !ok {
		w.sem.Release(1)
		return false
	}

	go func() {
		defer w.sem.Release(1)
		w.run(ctx, job)
	}()
	return true
}

func (w *Worker) run(ctx context.Context, job *broadcast.Job) {
	b, err := w.broadcasts.GetByID(ctx, job.BroadcastID)
	if err != nil {
		w.fail(ctx, job, fmt.Errorf("load broadcast: %w", err))
		return
	}

	deviceID, err := device.IDFromString(b.DeviceID())
	if err != nil {
		w.fail(ctx, job, fmt.Errorf("invalid device id: %w", err))
		return
	}

	mgr, ok := w.managers.ManagerFor(deviceID)
	if !ok || mgr.State() != connmgr.StateAuthenticated {
		// §4.5 C7 step 1: abort retryable, device will be picked up by the
		// supervisor's own next reconcile tick.
		w.retry(ctx, job, fmt.Errorf("no authenticated connection manager for device"))
		return
	}
	client := mgr.Client()
	if client == nil {
		w.retry(ctx, job, fmt.Errorf("connection manager has no live client"))
		return
	}

	tmpl := broadcast.Parse(b.Template())
	pacing := b.Pacing()
	recipients := b.Recipients()
	baseDelay := pacing.BaseDelay
	if pacing.DelayMode == broadcast.DelayModeAdaptive {
		baseDelay = broadcast.BaseDelayFor(len(recipients))
	}
	limiter := rate.NewLimiter(rate.Every(baseDelay), 1)

	sent, failed := 0, 0
	cancelled := false
	for i, r := range recipients {
		current, err := w.broadcasts.GetByID(ctx, b.ID())
		if err == nil && current.Status() == broadcast.StatusCancelled {
			cancelled = true
			break
		}

		evalCtx := w.resolveContext(ctx, b.OwnerID(), r)
		message := tmpl.Eval(evalCtx)

		delay := limiter.Reserve().Delay()
		if pacing.Randomize && delay > 0 {
			jitter := time.Duration(float64(delay) * (rand.Float64()*0.6 - 0.3))
			delay += jitter
		}
		if delay > 0 {
			time.Sleep(delay)
		}

		if err := w.sendOne(ctx, client, r.Phone, message, b.MediaURL()); err != nil {
			failed++
			w.logger.WarnWithFields("broadcast send failed", logger.Fields{
				"broadcast_id": b.ID(), "phone": r.Phone, "error": err.Error(),
			})
			time.Sleep(1 * time.Second)
		} else {
			sent++
		}

		if pacing.BatchSize > 0 && (i+1)%pacing.BatchSize == 0 {
			b.RecordSent(sent)
			b.RecordFailed(failed)
			sent, failed = 0, 0
			_ = w.broadcasts.Update(ctx, b)
			time.Sleep(pacing.PauseBetweenBatches)
		}
	}

	b.RecordSent(sent)
	b.RecordFailed(failed)
	if cancelled {
		_ = b.Cancel()
	} else {
		b.Complete()
	}
	_ = w.broadcasts.Update(ctx, b)
	_ = w.queue.Complete(ctx, job.ID)
}

func (w *Worker) sendOne(ctx context.Context, client whatsapp.Client, phone, message, mediaURL string) error {
	if mediaURL == "" {
		return client.SendMessage(ctx, phone, message)
	}

	path, mt, err := w.fetchMedia(ctx, mediaURL)
	if err != nil {
		w.logger.WarnWithFields("media fetch failed, falling back to text-only", logger.Fields{
			"media_url": mediaURL, "error": err.Error(),
		})
		return client.SendMessage(ctx, phone, message)
	}
	defer os.Remove(path)

	if mt != "" && isImageType(mt) {
		return client.SendImage(ctx, phone, path, message)
	}
	return client.SendDocument(ctx, phone, path, "attachment")
}

func isImageType(mimeType string) bool {
	return len(mimeType) >= 6 && mimeType[:6] == "image/"
}

// fetchMedia downloads a URL with retries, sniffing the real content type
// rather than trusting the caller-supplied one (§4.5 step 2c).
func (w *Worker) fetchMedia(ctx context.Context, url string) (path string, mimeType string, err error) {
	var lastErr error
	for attempt := 0; attempt < mediaFetchAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", "", err
		}
		resp, err := w.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || len(body) == 0 {
			lastErr = fmt.Errorf("empty or unreadable body")
			continue
		}

		f, err := os.CreateTemp("", "broadcast-media-*")
		if err != nil {
			return "", "", err
		}
		if _, err := f.Write(body); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", "", err
		}
		f.Close()

		detected := mimetype.Detect(body)
		return f.Name(), detected.String(), nil
	}
	return "", "", fmt.Errorf("media fetch exhausted retries: %w", lastErr)
}

// resolveContext looks up personalization data through the contact repository
// (§4.5 step 2a); no cache sits in front of that lookup.
func (w *Worker) resolveContext(ctx context.Context, ownerID string, r broadcast.Recipient) broadcast.EvalContext {
	evalCtx := broadcast.EvalContext{
		Phone: r.Phone, Var1: r.Var1, Var2: r.Var2, Var3: r.Var3, Now: time.Now(),
	}
	if c, err := w.contacts.GetByPhone(ctx, ownerID, r.Phone); err == nil && c != nil {
		evalCtx.ContactName = c.Name
		if evalCtx.Var1 == "" {
			evalCtx.Var1 = c.Var1
		}
		if evalCtx.Var2 == "" {
			evalCtx.Var2 = c.Var2
		}
		if evalCtx.Var3 == "" {
			evalCtx.Var3 = c.Var3
		}
	}
	return evalCtx
}

func (w *Worker) retry(ctx context.Context, job *broadcast.Job, cause error) {
	nextAttempt := job.Attempt + 1
	var delay time.Duration
	if nextAttempt-1 < len(retryBackoffs) {
		delay = retryBackoffs[nextAttempt-1]
	} else {
		delay = retryBackoffs[len(retryBackoffs)-1]
	}
	next := time.Now().Add(delay).Unix()
	if err := w.queue.Retry(ctx, job.ID, cause.Error(), next, maxAttempts); err != nil {
		w.logger.ErrorWithError("broadcast worker: retry bookkeeping failed", err, logger.Fields{"job_id": job.ID})
	}
}

func (w *Worker) fail(ctx context.Context, job *broadcast.Job, cause error) {
	w.logger.ErrorWithError("broadcast worker: job failed", cause, logger.Fields{"job_id": job.ID})
	_ = w.queue.Retry(ctx, job.ID, cause.Error(), time.Now().Unix(), 0)
}

// Scheduler drives the draft-promotion (30s) and queueing-fallback (15s)
// ticks described in §4.5.
type Scheduler struct {
	broadcasts broadcast.Repository
	queue      broadcast.QueueRepository
	logger     logger.Logger
	cron       *cron.Cron
}

func NewScheduler(broadcasts broadcast.Repository, queue broadcast.QueueRepository, log logger.Logger) *Scheduler {
	return &Scheduler{broadcasts: broadcasts, queue: queue, logger: log}
}

func (s *Scheduler) Start(ctx context.Context, schedulerTick, queueingTick time.Duration) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", schedulerTick), func() { s.promoteDue(ctx) }); err != nil {
		return fmt.Errorf("schedule draft-promotion tick: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", queueingTick), func() { s.requeueOrphans(ctx) }); err != nil {
		return fmt.Errorf("schedule queueing tick: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// promoteDue implements C8: draft -> processing + enqueue, every 30s.
func (s *Scheduler) promoteDue(ctx context.Context) {
	due, err := s.broadcasts.ListDue(ctx, 100)
	if err != nil {
		s.logger.ErrorWithError("scheduler: list due broadcasts failed", err, nil)
		return
	}
	for _, b := range due {
		ok, err := s.broadcasts.BeginProcessing(ctx, b.ID())
		if err != nil {
			s.logger.ErrorWithError("scheduler: begin processing failed", err, logger.Fields{"broadcast_id": b.ID()})
			continue
		}
		if !ok {
			continue
		}
		if err := s.queue.Enqueue(ctx, b.ID()); err != nil {
			s.logger.ErrorWithError("scheduler: enqueue failed", err, logger.Fields{"broadcast_id": b.ID()})
		}
	}
}

// requeueOrphans implements the always-on degrade-to-polling fallback (§4.5):
// processing broadcasts with no live job get re-enqueued.
func (s *Scheduler) requeueOrphans(ctx context.Context) {
	orphans, err := s.broadcasts.ListProcessingWithoutJob(ctx, 100)
	if err != nil {
		s.logger.ErrorWithError("scheduler: list orphaned broadcasts failed", err, nil)
		return
	}
	for _, b := range orphans {
		live, err := s.queue.HasLiveJob(ctx, b.ID())
		if err != nil || live {
			continue
		}
		if err := s.queue.Enqueue(ctx, b.ID()); err != nil {
			s.logger.ErrorWithError("scheduler: requeue failed", err, logger.Fields{"broadcast_id": b.ID()})
		}
	}
}
