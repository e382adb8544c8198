package record

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// TransitionEntry is one hash-chained line in a record's transition log
// (spec §4.2: "all state transitions are logged with timestamp and
// cause"; spec §3.1's "append-only and hash-chained lineage").
type TransitionEntry struct {
	Timestamp time.Time
	From      State
	To        State
	Reason    string
	PrevHash  string
}

// entryHash is the digest chained into the next entry, binding it to
// everything recorded before it.
func (e TransitionEntry) entryHash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s",
		e.Timestamp.UTC().Format(time.RFC3339Nano), e.From, e.To, e.Reason, e.PrevHash)))
	return hex.EncodeToString(sum[:])
}

func transitionLogPath(dir, id string) string {
	return filepath.Join(dir, id+".log")
}

// appendTransition appends entry to id's transition log, chaining it to
// the hash of the previous line, and returns entry's own hash so the
// caller can stamp a caused-by reference if useful.
func appendTransition(dir, id string, from, to State, reason string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "creating transition log directory %s", dir)
	}
	path := transitionLogPath(dir, id)

	prevHash, err := lastEntryHash(path)
	if err != nil {
		return "", err
	}

	entry := TransitionEntry{Timestamp: now, From: from, To: to, Reason: reason, PrevHash: prevHash}
	hash := entry.entryHash()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "opening transition log %s", path)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\n",
		entry.Timestamp.UTC().Format(time.RFC3339Nano), entry.From, entry.To, entry.Reason, entry.PrevHash, hash)
	if _, err := f.WriteString(line); err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "appending transition log %s", path)
	}
	return hash, nil
}

// lastEntryHash returns the hash of the final line in id's transition
// log, or "" (the genesis value) if the log does not yet exist.
func lastEntryHash(path string) (string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "reading transition log %s", path)
	}
	defer f.Close()

	var last string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) == 6 {
			last = fields[5]
		}
	}
	if err := scanner.Err(); err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "scanning transition log %s", path)
	}
	return last, nil
}

// StrategyLookup resolves a strategy id to its Lineage.Parents, used by
// ResolveLineage and DAG cycle checking without coupling this file to
// the Store's file-I/O concerns.
type StrategyLookup func(id string) (Lineage, error)

// ResolveLineage walks parent pointers transitively from id, returning
// the full ancestor set in discovery order. It returns a conflict error
// if a cycle is encountered, since lineage must remain a DAG (spec §9).
func ResolveLineage(id string, lookup StrategyLookup) ([]string, error) {
	visited := map[string]bool{id: true}
	path := map[string]bool{id: true}
	var ancestors []string

	var walk func(current string) error
	walk = func(current string) error {
		lineage, err := lookup(current)
		if err != nil {
			return err
		}
		for _, parent := range lineage.Parents {
			if path[parent] {
				return apperrors.NewConflictError("lineage cycle detected at " + parent)
			}
			if !visited[parent] {
				visited[parent] = true
				ancestors = append(ancestors, parent)
				path[parent] = true
				if err := walk(parent); err != nil {
					return err
				}
				path[parent] = false
			}
		}
		return nil
	}

	if err := walk(id); err != nil {
		return nil, err
	}
	return ancestors, nil
}

// WouldIntroduceCycle reports whether adding parents as lineage parents
// of candidateID would create a cycle, used to gate Idea/Proposal
// approval (spec §9: "cycle check at approval; reject approvals that
// would introduce a back edge").
func WouldIntroduceCycle(candidateID string, parents []string, lookup StrategyLookup) (bool, error) {
	for _, parent := range parents {
		if parent == candidateID {
			return true, nil
		}
		ancestors, err := ResolveLineage(parent, lookup)
		if err != nil {
			return false, err
		}
		for _, a := range ancestors {
			if a == candidateID {
				return true, nil
			}
		}
	}
	return false, nil
}
