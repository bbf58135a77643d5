package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"doctor-booking/slot"

	"github.com/google/uuid"
)

type SlotFailure struct {
	Time time.Time
	Err  error
}

// BatchResult reports a non-transactional batch: created slots stay created
// even when siblings failed.
type BatchResult struct {
	Created  []slot.Slot
	Failures []SlotFailure
}

func (r BatchResult) Succeeded() int { return len(r.Created) }

func (r BatchResult) Failed() int { return len(r.Failures) }

func (r BatchResult) Summary() string {
	if r.Failed() == 0 {
		return fmt.Sprintf("%d slots created", r.Succeeded())
	}
	return fmt.Sprintf("%d slots created, %d failed", r.Succeeded(), r.Failed())
}

// ProvisionDay issues one CreateSlot call per time of day on date, all
// concurrently, and waits for every call to settle. Failed calls are neither
// retried nor compensated. Only malformed input fails the call as a whole.
func (c *Client) ProvisionDay(ctx context.Context, doctorID uuid.UUID, date string, times []string, loc *time.Location) (BatchResult, error) {
	instants, err := slot.Compose(date, times, loc)
	if err != nil {
		return BatchResult{}, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result BatchResult
	)
	for _, instant := range instants {
		wg.Add(1)
		go func(instant time.Time) {
			defer wg.Done()
			s, err := c.CreateSlot(ctx, doctorID, instant)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, SlotFailure{Time: instant, Err: err})
				return
			}
			result.Created = append(result.Created, *s)
		}(instant)
	}
	wg.Wait()

	sort.Slice(result.Created, func(i, j int) bool { return result.Created[i].Time.Before(result.Created[j].Time) })
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Time.Before(result.Failures[j].Time) })

	return result, nil
}
