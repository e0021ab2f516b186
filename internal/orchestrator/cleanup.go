package orchestrator

import (
    "os"
    "path/filepath"
    "strings"
    "time"
)

// CleanupTemps removes known temporary files created during analysis
// (mediimg-*) older than the provided age threshold. The per-request scoped
// removal handles the normal paths; this sweep catches strays left by
// crashes.
func CleanupTemps(maxAge time.Duration) {
    dir := os.TempDir()
    now := time.Now()
    _ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
        if err != nil || info == nil || info.IsDir() { return nil }
        if !strings.HasPrefix(info.Name(), "mediimg-") {
            return nil
        }
        if now.Sub(info.ModTime()) >= maxAge {
            _ = os.Remove(path)
        }
        return nil
    })
}
