package activity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type claim struct {
	attempt string
	summary Summary
}

// Prefetch generates details for every candidate that is Idle or Failed and
// waits for all of them. One failure never affects the others.
func (s *Service) Prefetch(ctx context.Context, candidates []Summary) PrefetchReport {
	claimed, skipped := s.claim(ctx, candidates)
	report := PrefetchReport{
		Scheduled: claimIDs(claimed),
		Skipped:   skipped,
	}
	if failed := s.run(ctx, claimed); len(failed) > 0 {
		report.Failed = failed
	}
	return report
}

// PrefetchAsync claims eligible candidates and generates them in the
// background. It returns the claimed IDs without waiting.
func (s *Service) PrefetchAsync(ctx context.Context, candidates []Summary) []string {
	claimed, _ := s.claim(ctx, candidates)
	if len(claimed) == 0 {
		return []string{}
	}

	bg := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.run(bg, claimed)
	}()
	return claimIDs(claimed)
}

// claim moves every eligible candidate to Loading. Candidates already
// Complete or Loading are skipped.
func (s *Service) claim(ctx context.Context, candidates []Summary) ([]claim, []string) {
	seen := make(map[string]bool, len(candidates))
	claimed := make([]claim, 0, len(candidates))
	skipped := []string{}

	for _, c := range candidates {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		if !s.coord.BeginLoading(ctx, c.ID) {
			skipped = append(skipped, c.ID)
			continue
		}
		attempt := uuid.NewString()
		s.logEvent(ctx, attempt, c.ID, EventLoading, "")
		claimed = append(claimed, claim{attempt: attempt, summary: c})
	}

	recordPrefetchSkipped(len(skipped))
	if len(claimed) > 0 {
		s.logger.Info("prefetching activity details", "scheduled", len(claimed), "skipped", len(skipped))
	}
	return claimed, skipped
}

func (s *Service) run(ctx context.Context, claimed []claim) map[string]string {
	var (
		mu     sync.Mutex
		failed = make(map[string]string)
		g      errgroup.Group
	)
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}

	for _, c := range claimed {
		g.Go(func() error {
			if _, err := s.generate(ctx, c.attempt, c.summary); err != nil {
				mu.Lock()
				failed[c.summary.ID] = err.Error()
				mu.Unlock()
			}
			// Failures are recorded per activity; returning nil keeps the
			// rest of the batch running.
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

func claimIDs(claimed []claim) []string {
	ids := make([]string, 0, len(claimed))
	for _, c := range claimed {
		ids = append(ids, c.summary.ID)
	}
	return ids
}
