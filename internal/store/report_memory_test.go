package store

import (
    "context"
    "testing"
    "time"
)

func testReport(id string) Report {
    return Report{
        ID:       id,
        Filename: "report_patient_2026-08-31.pdf",
        Markdown: "## Findings",
        PDF:      []byte("%PDF-1.4 fake"),
        Image:    []byte("\x89PNG fake"),
        Engine:   "gemini",
        Model:    "gemini-2.0-flash",
        Created:  time.Now(),
    }
}

func TestMemoryStorePutGet(t *testing.T) {
    s := NewMemoryStore(time.Hour)
    ctx := context.Background()

    if err := s.Put(ctx, testReport("a")); err != nil {
        t.Fatalf("Put: %v", err)
    }
    got, ok, err := s.Get(ctx, "a")
    if err != nil || !ok {
        t.Fatalf("Get: ok=%v err=%v", ok, err)
    }
    if got.ID != "a" || got.Engine != "gemini" || len(got.PDF) == 0 || len(got.Image) == 0 {
        t.Errorf("record mismatch: %+v", got)
    }

    if _, ok, _ := s.Get(ctx, "missing"); ok {
        t.Error("unknown id must not be found")
    }
}

func TestMemoryStoreOverwrite(t *testing.T) {
    s := NewMemoryStore(time.Hour)
    ctx := context.Background()
    s.Put(ctx, testReport("a"))
    r := testReport("a")
    r.Markdown = "updated"
    s.Put(ctx, r)
    got, ok, _ := s.Get(ctx, "a")
    if !ok || got.Markdown != "updated" {
        t.Errorf("overwrite lost: %+v", got)
    }
}

func TestMemoryStoreExpiry(t *testing.T) {
    s := NewMemoryStore(10 * time.Millisecond)
    ctx := context.Background()
    s.Put(ctx, testReport("a"))
    time.Sleep(30 * time.Millisecond)
    if _, ok, _ := s.Get(ctx, "a"); ok {
        t.Error("expired report still served")
    }
}

func TestMemoryStorePruneOnPut(t *testing.T) {
    s := NewMemoryStore(10 * time.Millisecond)
    ctx := context.Background()
    s.Put(ctx, testReport("old"))
    time.Sleep(30 * time.Millisecond)
    s.Put(ctx, testReport("new"))

    s.mu.Lock()
    _, oldKept := s.items["old"]
    s.mu.Unlock()
    if oldKept {
        t.Error("expired entry survived the prune pass")
    }
}

func TestMemoryStorePing(t *testing.T) {
    s := NewMemoryStore(0)
    if err := s.Ping(context.Background()); err != nil {
        t.Errorf("Ping: %v", err)
    }
    if err := s.Close(); err != nil {
        t.Errorf("Close: %v", err)
    }
}
