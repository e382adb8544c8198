package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const defaultMaxSizeBytes = 10 * 1024 * 1024

// rotatingFile is a minimal size-based log rotator: once the active file
// exceeds maxSize bytes, it is renamed with a timestamp suffix and a
// fresh file is opened in its place. The pipeline's own logging is not
// itself a core subsystem (spec §1 Out-of-scope: "log rotation"); this
// exists only so the workspace's logs/ directory is a well-behaved
// sink rather than an ever-growing single file.
type rotatingFile struct {
	mu      sync.Mutex
	dir     string
	name    string
	maxSize int64
	file    *os.File
	size    int64
}

func newRotatingFile(dir, name string, maxSize int64) (*rotatingFile, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxSizeBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	rf := &rotatingFile{dir: dir, name: name, maxSize: maxSize}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	path := filepath.Join(rf.dir, rf.name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	rf.file = f
	rf.size = info.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.size+int64(len(p)) > rf.maxSize {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *rotatingFile) rotate() error {
	rf.file.Close()
	path := filepath.Join(rf.dir, rf.name)
	rotated := filepath.Join(rf.dir, fmt.Sprintf("%s.%s", rf.name, time.Now().UTC().Format("20060102T150405Z")))
	if err := os.Rename(path, rotated); err != nil && !os.IsNotExist(err) {
		return err
	}
	return rf.open()
}
