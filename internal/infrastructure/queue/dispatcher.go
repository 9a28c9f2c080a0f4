package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/ports"
	"github.com/bloggers-platform/accounts-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	sendTimeout    = 30 * time.Second
)

type confirmationJob struct {
	Email string
	Code  string
}

// EmailDispatcher delivers fire-and-forget confirmation emails through a
// fixed set of workers, sharded by recipient so retries for one address never
// reorder behind another's backlog. Send failures are logged and discarded;
// the registration that enqueued the job has already succeeded.
type EmailDispatcher struct {
	workers []chan confirmationJob
	sender  ports.NotificationSender
	log     zerolog.Logger
}

// NewEmailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewEmailDispatcher(numWorkers int, sender ports.NotificationSender, log zerolog.Logger) *EmailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &EmailDispatcher{
		workers: make([]chan confirmationJob, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan confirmationJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *EmailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// EnqueueConfirmation hands a confirmation email to the worker responsible
// for the recipient. Non-blocking up to channelBuffer capacity.
func (d *EmailDispatcher) EnqueueConfirmation(email, code string) {
	d.workers[d.shardIndex(email)] <- confirmationJob{Email: email, Code: code}
}

func (d *EmailDispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *EmailDispatcher) runWorker(ctx context.Context, id int, ch <-chan confirmationJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			err := d.sender.SendConfirmationEmail(sendCtx, job.Email, job.Code)
			cancel()
			if err != nil {
				metrics.EmailsSentTotal.WithLabelValues("confirmation", "failure").Inc()
				d.log.Error().Err(err).
					Str("email", job.Email).
					Int("worker_id", id).
					Msg("confirmation email send failed")
				continue
			}
			metrics.EmailsSentTotal.WithLabelValues("confirmation", "success").Inc()
		}
	}
}
