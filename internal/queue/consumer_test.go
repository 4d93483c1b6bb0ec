package queue

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnwrapDeadLetter(t *testing.T) {
	t.Parallel()

	job := `{"run_id":"8c1d","source":"file"}`
	entry, err := json.Marshal(DeadLetter{Message: json.RawMessage(job), Error: "authentication failed", FailedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	got, err := UnwrapDeadLetter(entry)
	if err != nil {
		t.Fatalf("UnwrapDeadLetter failed: %v", err)
	}
	if string(got) != job {
		t.Errorf("Expected original job %s, got %s", job, got)
	}

	if _, err := UnwrapDeadLetter([]byte("not json")); err == nil {
		t.Error("Expected error for malformed dead letter")
	}
}
