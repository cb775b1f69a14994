package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/civicsync/civicsync-api/internal/api/metrics"
	"github.com/civicsync/civicsync-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Awarder applies a single points increment. Satisfied by the Mongo
// principal repository.
type Awarder interface {
	AwardPoints(ctx context.Context, principalID string, amount int64) error
}

// Dispatcher routes point awards to a fixed set of workers using
// consistent hashing on the principal id, so awards for one principal
// always apply in order.
type Dispatcher struct {
	workers []chan ports.PointsAward
	awarder Awarder
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, awarder Awarder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PointsAward, numWorkers),
		awarder: awarder,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PointsAward, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an award to the worker responsible for its principal.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(award ports.PointsAward) {
	idx := d.shardIndex(award.PrincipalID)
	d.workers[idx] <- award
	metrics.PointsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a principal id deterministically to a worker index.
func (d *Dispatcher) shardIndex(principalID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(principalID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PointsAward) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case award, ok := <-ch:
			if !ok {
				return
			}
			metrics.PointsQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.awarder.AwardPoints(ctx, award.PrincipalID, award.Amount); err != nil {
				d.log.Error().Err(err).
					Str("principal_id", award.PrincipalID).
					Int64("amount", award.Amount).
					Int("worker_id", id).
					Msg("point award failed")
				continue
			}
			metrics.PointsAwardedTotal.Add(float64(award.Amount))
			d.log.Debug().
				Str("principal_id", award.PrincipalID).
				Int64("amount", award.Amount).
				Str("reason", award.Reason).
				Msg("points awarded")
		}
	}
}
