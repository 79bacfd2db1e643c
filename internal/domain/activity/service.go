package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Service generates activity details and keeps the coordinator in step with
// the outcome.
type Service struct {
	coord     *Coordinator
	generator Generator
	places    PlaceSearcher
	lookup    ActivityLookup
	events    EventLog
	logger    *slog.Logger

	timeout       time.Duration
	maxConcurrent int
	limiter       *rate.Limiter

	flights    singleflight.Group
	background sync.WaitGroup
}

// NewService creates a new activity service.
func NewService(cfg ServiceConfig, deps ServiceDeps, logger *slog.Logger) (*Service, error) {
	if deps.Coordinator == nil {
		return nil, fmt.Errorf("coordinator required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	return &Service{
		coord:         deps.Coordinator,
		generator:     deps.Generator,
		places:        deps.Places,
		lookup:        deps.Lookup,
		events:        deps.Events,
		logger:        logger,
		timeout:       timeout,
		maxConcurrent: cfg.MaxConcurrent,
		limiter:       limiter,
	}, nil
}

// Coordinator returns the status store the service writes to.
func (s *Service) Coordinator() *Coordinator {
	return s.coord
}

// Ensure returns the detail for id, generating it when nothing is cached.
// If another caller is already generating id, Ensure waits for that result.
// Canceling ctx only stops this caller from waiting; the shared work goes on
// and its outcome still lands in the store.
func (s *Service) Ensure(ctx context.Context, id string) (Detail, error) {
	if id == "" {
		return Detail{}, ErrInvalidInput
	}
	shared := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(id, func() (any, error) {
		return s.ensure(shared, id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Detail{}, res.Err
		}
		return res.Val.(Detail), nil
	case <-ctx.Done():
		return Detail{}, ctx.Err()
	}
}

func (s *Service) ensure(ctx context.Context, id string) (Detail, error) {
	for {
		switch st := s.coord.Status(ctx, id).(type) {
		case Complete:
			if st.Detail.NeedsPlaces() && s.places != nil {
				enriched := st.Detail.WithPlaces(s.enrich(ctx, st.Detail.PlaceSearchKeywords))
				if len(enriched.RecommendedPlaces) > 0 {
					s.coord.SetComplete(ctx, id, enriched)
					return enriched, nil
				}
			}
			return st.Detail, nil
		case Loading:
			s.logger.Debug("activity generation in flight elsewhere, waiting", "id", id)
			detail, err := s.wait(ctx, id)
			if errors.Is(err, errReclaim) {
				continue
			}
			return detail, err
		case Failed:
			s.logger.Info("retrying failed activity generation", "id", id)
		}

		if !s.coord.BeginLoading(ctx, id) {
			// Someone else claimed it first.
			continue
		}
		attempt := uuid.NewString()
		s.logEvent(ctx, attempt, id, EventLoading, "")

		summary, err := s.findActivity(ctx, id)
		if err != nil {
			s.fail(ctx, attempt, id, err)
			return Detail{}, err
		}
		return s.generate(ctx, attempt, summary)
	}
}

// History lists recent generation events for id, newest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]Event, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if s.events == nil {
		return []Event{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	events, err := s.events.List(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("listing generation events: %w", err)
	}
	return events, nil
}

// Wait blocks until background prefetches have finished.
func (s *Service) Wait() {
	s.background.Wait()
}

func (s *Service) findActivity(ctx context.Context, id string) (Summary, error) {
	if s.lookup == nil {
		return Summary{}, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	summary, err := s.lookup.FindActivity(ctx, id)
	if err != nil {
		return Summary{}, fmt.Errorf("finding activity %s: %w", id, err)
	}
	return summary, nil
}

// generate runs one generation attempt for a summary already marked Loading.
// The call is detached from ctx cancellation so its result always lands in
// the store.
func (s *Service) generate(ctx context.Context, attempt string, summary Summary) (Detail, error) {
	recordGenerationStart()
	start := time.Now()

	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	detail, err := s.generateDetail(genCtx, summary)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrGenerationTimeout, s.timeout, err)
		}
		recordGenerationEnd(time.Since(start).Seconds(), true)
		s.fail(genCtx, attempt, summary.ID, err)
		return Detail{}, err
	}

	s.coord.SetComplete(genCtx, summary.ID, detail)
	s.logEvent(genCtx, attempt, summary.ID, EventComplete, "")
	recordGenerationEnd(time.Since(start).Seconds(), false)
	return detail, nil
}

func (s *Service) generateDetail(ctx context.Context, summary Summary) (Detail, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Detail{}, fmt.Errorf("waiting for generation slot: %w", err)
		}
	}
	detail, err := s.generator.Generate(ctx, summary)
	if err != nil {
		return Detail{}, err
	}
	detail.ID = summary.ID
	if len(detail.PlaceSearchKeywords) > 0 && s.places != nil {
		detail = detail.WithPlaces(s.enrich(ctx, detail.PlaceSearchKeywords))
	}
	return detail, nil
}

// enrich searches every keyword in parallel and keeps the first place found
// for each, tagged with the keyword's reason.
func (s *Service) enrich(ctx context.Context, keywords []PlaceKeyword) []Place {
	found := make([]*Place, len(keywords))
	var g errgroup.Group
	for i, kw := range keywords {
		if kw.Keyword == "" {
			continue
		}
		g.Go(func() error {
			places, err := s.places.Search(ctx, kw.Keyword, 1)
			if err != nil {
				s.logger.Warn("place search failed", "keyword", kw.Keyword, "error", err)
				return nil
			}
			if len(places) == 0 {
				return nil
			}
			place := places[0]
			place.Reason = kw.Reason
			found[i] = &place
			return nil
		})
	}
	_ = g.Wait()

	places := make([]Place, 0, len(keywords))
	for _, p := range found {
		if p != nil {
			places = append(places, *p)
		}
	}
	return places
}

// errReclaim reports that id went back to Idle while waiting on it, so the
// waiter should claim it itself.
var errReclaim = errors.New("activity released while waiting")

// wait blocks until id leaves Loading. It gives up after the generation
// timeout, which covers a Loading status with no generation behind it.
func (s *Service) wait(ctx context.Context, id string) (Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan Status, 1)
	unsubscribe := s.coord.Subscribe(ctx, id, func(st Status) {
		if _, ok := st.(Loading); ok {
			return
		}
		select {
		case done <- st:
		default:
		}
	})
	defer unsubscribe()

	select {
	case st := <-done:
		switch st := st.(type) {
		case Complete:
			return st.Detail, nil
		case Failed:
			return Detail{}, fmt.Errorf("%w: %s", ErrGenerationFailed, st.Message)
		default:
			return Detail{}, errReclaim
		}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Detail{}, fmt.Errorf("%w: waiting for %s after %s", ErrGenerationTimeout, id, s.timeout)
		}
		return Detail{}, ctx.Err()
	}
}

func (s *Service) fail(ctx context.Context, attempt, id string, err error) {
	s.coord.SetError(id, err.Error())
	s.logEvent(ctx, attempt, id, EventError, err.Error())
}

func (s *Service) logEvent(ctx context.Context, attempt, id string, status EventStatus, message string) {
	if s.events == nil {
		return
	}
	entry := &Event{
		AttemptID:  attempt,
		ActivityID: id,
		Status:     status,
		Message:    message,
		CreatedAt:  time.Now(),
	}
	if err := s.events.Log(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("logging generation event failed", "id", id, "status", status, "error", err)
	}
}
