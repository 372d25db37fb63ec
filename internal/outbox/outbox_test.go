package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFakeAppenderRecordsMessages(t *testing.T) {
	appender := NewFakeAppender()
	userID := uuid.New()
	aggregateID := uuid.New()
	now := time.Now().UTC()

	msg := New(aggregateID, AggregateTypeTask, MessageTypeTaskCreated, []byte(`{}`), userID, nil, now)
	if err := appender.Append(context.Background(), nil, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages := appender.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].AggregateID != aggregateID {
		t.Fatalf("expected aggregate id %v, got %v", aggregateID, messages[0].AggregateID)
	}
	if messages[0].MessageType != MessageTypeTaskCreated {
		t.Fatalf("expected MessageTypeTaskCreated, got %s", messages[0].MessageType)
	}
}

func TestFakeAppenderFailNext(t *testing.T) {
	appender := NewFakeAppender()
	appender.FailNextAppend()

	msg := New(uuid.New(), AggregateTypeNote, MessageTypeNoteCreated, nil, uuid.New(), nil, time.Now().UTC())
	if err := appender.Append(context.Background(), nil, msg); err == nil {
		t.Fatal("expected simulated failure")
	}
	if len(appender.Messages()) != 0 {
		t.Fatal("expected no messages recorded after failed append")
	}

	// Next append should succeed again.
	if err := appender.Append(context.Background(), nil, msg); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
}
