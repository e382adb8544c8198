package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Kind distinguishes the three id namespaces allocated by the workspace
// (spec §3.1): STRAT-NNN, IDEA-NNN, PROP-NNN. Store.AppendLearning also
// allocates LEARN-NNN ids, passing the untyped Kind "LEARN".
type Kind string

const (
	KindStrategy Kind = "STRAT"
	KindIdea     Kind = "IDEA"
	KindProposal Kind = "PROP"
)

// IDAllocator is a single-writer, on-disk-journaled monotonic id
// allocator (spec §9: "Workspace-global mutable state (id counters)").
// Readers lagging behind a concurrently running allocator only ever see
// an older, still-valid journal value — never a torn one, since every
// Next call rewrites the journal file atomically via rename.
//
// P5 requires the integer suffix to be strictly increasing within the
// workspace across any sequence of creates; a single in-process mutex
// plus one journal file per Kind is sufficient because the Record Store
// is the sole writer of ids (spec §9's "single-writer allocator").
type IDAllocator struct {
	dir string
	mu  sync.Mutex
}

// NewIDAllocator returns an allocator journaling counters under dir
// (typically <workspace>/.state/ids).
func NewIDAllocator(dir string) *IDAllocator {
	return &IDAllocator{dir: dir}
}

// Next allocates and persists the next id for kind, e.g. "STRAT-014".
func (a *IDAllocator) Next(kind Kind) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "creating id journal directory %s", a.dir)
	}

	current, err := a.read(kind)
	if err != nil {
		return "", err
	}
	next := current + 1

	if err := a.write(kind, next); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", kind, next), nil
}

func (a *IDAllocator) journalPath(kind Kind) string {
	return filepath.Join(a.dir, strings.ToLower(string(kind))+".counter")
}

func (a *IDAllocator) read(kind Kind) (int, error) {
	path := a.journalPath(kind)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "reading id journal %s", path)
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "corrupt id journal %s", path)
	}
	return value, nil
}

// write persists value via a temp-file-then-rename so a concurrent
// reader never observes a partially written journal.
func (a *IDAllocator) write(kind Kind, value int) error {
	path := a.journalPath(kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "writing id journal %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "committing id journal %s", path)
	}
	return nil
}
