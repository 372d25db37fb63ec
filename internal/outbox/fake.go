package outbox

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

// FakeAppender is an in-memory Appender used by engine-level tests so
// Push/Pull/Resolve logic can be exercised without a database. It ignores
// tx beyond using it as a boundary marker; callers that want to assert
// rollback-discards-appends should roll their fake tx state back on their
// own and re-check Messages().
type FakeAppender struct {
	mu       sync.Mutex
	messages []Message
	failNext bool
}

// NewFakeAppender constructs an empty FakeAppender.
func NewFakeAppender() *FakeAppender {
	return &FakeAppender{}
}

// FailNextAppend makes the next call to Append return an error, simulating
// an infrastructure failure (spec.md §7 Infrastructure failure kind).
func (f *FakeAppender) FailNextAppend() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = true
}

func (f *FakeAppender) Append(_ context.Context, _ pgx.Tx, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errAppendFailed
	}
	f.messages = append(f.messages, msg)
	return nil
}

// Messages returns a snapshot of every message appended so far.
func (f *FakeAppender) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}
