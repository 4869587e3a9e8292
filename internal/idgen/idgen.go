// Package idgen produces the human-readable display numbers printed on
// pickup slips and support threads, and the collection PIN.
package idgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-redis/redis/v8"
)

// Display number prefixes.
const (
	OrderPrefix  = "EW"
	TicketPrefix = "ST"
)

// Sequence names.
const (
	OrderSequence  = "orders"
	TicketSequence = "support_tickets"
)

// Sequencer hands out monotonically increasing display sequence values.
// Implementations must be safe under concurrent creates; a plain row count
// is not.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

// RedisSequencer backs sequences with a Redis INCR per name, which is atomic
// across concurrent API instances.
type RedisSequencer struct {
	Client *redis.Client
}

func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{Client: client}
}

func (s *RedisSequencer) key(name string) string {
	return "seq:" + name
}

func (s *RedisSequencer) Next(ctx context.Context, name string) (int64, error) {
	return s.Client.Incr(ctx, s.key(name)).Result()
}

// Seed raises the counter to at least floor. Called once at startup with the
// current row count so numbering continues from existing data.
func (s *RedisSequencer) Seed(ctx context.Context, name string, floor int64) error {
	cur, err := s.Client.Get(ctx, s.key(name)).Int64()
	if err == redis.Nil {
		cur = 0
	} else if err != nil {
		return err
	}
	if cur >= floor {
		return nil
	}
	return s.Client.Set(ctx, s.key(name), floor, 0).Err()
}

// FormatNumber renders a sequence value as a display number, e.g. EW000042.
func FormatNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// GeneratePIN returns a 6-digit numeric string drawn uniformly from
// 100000-999999. It is a short-lived shared secret for the physical handoff,
// not a credential.
func GeneratePIN() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the platform source is broken
		panic(fmt.Sprintf("pin generation: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
