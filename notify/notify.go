package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const Channel = "lebs:events"

// Event names published to connected UI clients.
const (
	EventBorrowRecorded  = "borrow_recorded"
	EventReturnRequested = "return_requested"
	EventReturnConfirmed = "return_confirmed"
	EventReturnDeclined  = "return_declined"
)

// Notifier pushes fire-and-forget UI events over redis pub/sub. A zero
// Notifier is a no-op, so code paths without redis (tests, tooling) just
// skip publishing.
type Notifier struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Notifier { return &Notifier{rdb: rdb} }

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	SentAt  int64  `json:"sentAt"`
}

// Publish never returns an error: a dropped notification must not fail the
// data mutation it announces. Failures are logged and forgotten.
func (n *Notifier) Publish(ctx context.Context, event string, payload any) {
	if n == nil || n.rdb == nil {
		return
	}
	b, err := json.Marshal(envelope{Event: event, Payload: payload, SentAt: time.Now().Unix()})
	if err != nil {
		log.Printf("notify: marshal %s: %v", event, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := n.rdb.Publish(ctx, Channel, b).Err(); err != nil {
		log.Printf("notify: publish %s: %v", event, err)
	}
}
