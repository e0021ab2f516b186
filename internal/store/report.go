package store

import (
    "context"
    "time"
)

// Report is a finished analysis held for download until its TTL lapses.
type Report struct {
    ID       string
    Filename string
    Markdown string
    PDF      []byte
    Image    []byte // displayed PNG, shown on the result page and embedded in PDF
    Engine   string
    Model    string
    Created  time.Time
}

// Store keeps finished reports. The analyze and download actions arrive as
// separate requests, so this is the only state that crosses them.
type Store interface {
    Put(ctx context.Context, r Report) error
    Get(ctx context.Context, id string) (Report, bool, error)
    Ping(ctx context.Context) error
    Close() error
}
