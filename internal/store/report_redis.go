package store

import (
    "context"
    "fmt"
    "time"

    redis "github.com/redis/go-redis/v9"
)

type RedisStore struct {
    client *redis.Client
    keyNS  string
    ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
    opt, err := redis.ParseURL(redisURL)
    if err != nil { return nil, err }
    c := redis.NewClient(opt)
    if err := c.Ping(context.Background()).Err(); err != nil { return nil, err }
    if ttl <= 0 { ttl = time.Hour }
    return &RedisStore{client: c, keyNS: "report", ttl: ttl}, nil
}

func (s *RedisStore) key(id string) string { return fmt.Sprintf("%s:%s", s.keyNS, id) }

func (s *RedisStore) Put(ctx context.Context, r Report) error {
    m := map[string]interface{}{
        "filename": r.Filename,
        "markdown": r.Markdown,
        "pdf":      string(r.PDF),
        "image":    string(r.Image),
        "engine":   r.Engine,
        "model":    r.Model,
        "created":  r.Created.Format(time.RFC3339Nano),
    }
    k := s.key(r.ID)
    if err := s.client.HSet(ctx, k, m).Err(); err != nil { return err }
    return s.client.Expire(ctx, k, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (Report, bool, error) {
    res, err := s.client.HGetAll(ctx, s.key(id)).Result()
    if err != nil { return Report{}, false, err }
    if len(res) == 0 { return Report{}, false, nil }
    r := Report{
        ID:       id,
        Filename: res["filename"],
        Markdown: res["markdown"],
        PDF:      []byte(res["pdf"]),
        Image:    []byte(res["image"]),
        Engine:   res["engine"],
        Model:    res["model"],
    }
    if v := res["created"]; v != "" {
        if t, err := time.Parse(time.RFC3339Nano, v); err == nil { r.Created = t }
    }
    return r, true, nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.client.Close() }
