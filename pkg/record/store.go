package record

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"gopkg.in/yaml.v3"
)

// Store is the file-addressed Record Store of spec §4.2: one YAML file
// per record, an append-only hash-chained transition log per strategy,
// and a single-writer id allocator. Storage is file-addressed per
// record: query(filter) is served by scanning the strategies directory,
// acceptable at the record counts this workspace targets (hundreds to
// low thousands), rather than a secondary index.
type Store struct {
	root string
	ids  *IDAllocator

	// mu serializes update_state's read-compare-write sequence so two
	// goroutines racing on the same record's CAS can't both observe the
	// pre-write state (spec §5: "concurrent updates to the same record
	// serialize on the record's id via optimistic concurrency").
	mu sync.Mutex
}

// Open returns a Store rooted at dir, creating the directory layout if
// it does not already exist.
func Open(dir string) (*Store, error) {
	s := &Store{root: dir, ids: NewIDAllocator(filepath.Join(dir, ".state", "ids"))}
	for _, sub := range []string{
		s.strategiesDir(), s.archiveDir(), s.transitionsDir(),
		s.validationsDir(), s.learningsDir(), s.proposalsDir(), s.ideasDir(),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "creating record store directory %s", sub)
		}
	}
	return s, nil
}

func (s *Store) strategiesDir() string   { return filepath.Join(s.root, "strategies") }
func (s *Store) archiveDir() string      { return filepath.Join(s.root, "strategies", "archive") }
func (s *Store) transitionsDir() string  { return filepath.Join(s.root, "transitions") }
func (s *Store) validationsDir() string  { return filepath.Join(s.root, "validations") }
func (s *Store) learningsDir() string    { return filepath.Join(s.root, "learnings") }
func (s *Store) proposalsDir() string    { return filepath.Join(s.root, "proposals") }
func (s *Store) ideasDir() string        { return filepath.Join(s.root, "ideas") }
func (s *Store) strategyPath(id string) string {
	return filepath.Join(s.strategiesDir(), id+".yaml")
}

// writeAtomic marshals v as YAML to path via a temp-file-then-rename so
// readers never observe a partially written record (spec §4.2: "writes
// are atomic per record").
func writeAtomic(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "marshaling %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "committing %s", path)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return apperrors.NewNotFoundError(filepath.Base(path))
	}
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "reading %s", path)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "parsing %s", path)
	}
	return nil
}

// CreateStrategy allocates a new STRAT-NNN id, computes definition_hash,
// and persists the record in StatePending. It is the sole entry point
// for new strategies reaching the store, whether from ingestion or from
// an approved Idea/Proposal (spec §3.3).
func (s *Store) CreateStrategy(strat Strategy, now time.Time) (Strategy, error) {
	id, err := s.ids.Next(KindStrategy)
	if err != nil {
		return Strategy{}, err
	}
	strat.ID = id
	strat.CreatedAt = now
	strat.UpdatedAt = now
	strat.State = StatePending
	strat.DefinitionHash = DefinitionHash(strat.Definition)

	if err := writeAtomic(s.strategyPath(id), strat); err != nil {
		return Strategy{}, err
	}
	if _, err := appendTransition(s.transitionsDir(), id, "", StatePending, "created", now); err != nil {
		return Strategy{}, err
	}
	return strat, nil
}

// GetStrategy reads a Strategy Record by id.
func (s *Store) GetStrategy(id string) (Strategy, error) {
	var strat Strategy
	if err := readYAML(s.strategyPath(id), &strat); err != nil {
		return Strategy{}, err
	}
	return strat, nil
}

// UpdateState performs the Record Store's only mutation path on an
// existing record (spec §9: "transitions as the only API on the Record
// Store"). It fails with a conflict error if from does not match the
// record's current state, and with a validation error if from->to is
// not a legal edge (state.go).
func (s *Store) UpdateState(id string, from, to State, reason string, now time.Time) (Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	strat, err := s.GetStrategy(id)
	if err != nil {
		return Strategy{}, err
	}
	if err := ValidateTransition(strat.State, from, to); err != nil {
		return Strategy{}, err
	}

	strat.State = to
	strat.UpdatedAt = now
	if to == StateError {
		strat.ErrorCause = reason
	}

	if err := writeAtomic(s.strategyPath(id), strat); err != nil {
		return Strategy{}, err
	}
	if _, err := appendTransition(s.transitionsDir(), id, from, to, reason, now); err != nil {
		return Strategy{}, err
	}

	// ARCHIVED/REJECTED strategies move to an audit partition (spec
	// §3.3: "rejected strategies are moved to an archive partition for
	// audit"); the working copy is retained as well so get(id) and
	// query(filter) keep working against a single known path.
	if to == StateArchived || to == StateRejected {
		if err := writeAtomic(filepath.Join(s.archiveDir(), id+".yaml"), strat); err != nil {
			return Strategy{}, err
		}
	}

	return strat, nil
}

// AppendValidation writes an immutable Validation Record. A second
// validation against the same (definition_hash, code_hash,
// generator_version) key is refused unless force is true, per spec §5's
// idempotence rule; forcing writes an additional record rather than
// overwriting, preserving the audit trail.
func (s *Store) AppendValidation(v Validation, force bool) error {
	dir := filepath.Join(s.validationsDir(), v.StrategyID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "creating validation directory %s", dir)
	}

	existing, err := s.listValidations(v.StrategyID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.DefinitionHash == v.DefinitionHash && e.CodeHash == v.CodeHash && e.GeneratorVersion == v.GeneratorVersion && !force {
			return apperrors.New(apperrors.ErrorTypeConflict,
				"validation already recorded for this (definition_hash, code_hash, generator_version); pass force to append another").
				WithDetails(v.StrategyID)
		}
	}

	name := v.Timestamp.UTC().Format("20060102T150405.000000000") + ".yaml"
	return writeAtomic(filepath.Join(dir, name), v)
}

func (s *Store) listValidations(strategyID string) ([]Validation, error) {
	dir := filepath.Join(s.validationsDir(), strategyID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "listing validations in %s", dir)
	}
	out := make([]Validation, 0, len(entries))
	for _, entry := range entries {
		var v Validation
		if err := readYAML(filepath.Join(dir, entry.Name()), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ListValidations returns every Validation Record recorded for strategyID.
func (s *Store) ListValidations(strategyID string) ([]Validation, error) {
	return s.listValidations(strategyID)
}

// AppendLearning writes an append-only Learning Record.
func (s *Store) AppendLearning(l Learning, now time.Time) error {
	id, err := s.ids.Next("LEARN")
	if err != nil {
		return err
	}
	l.ID = id
	l.CreatedAt = now
	return writeAtomic(filepath.Join(s.learningsDir(), id+".yaml"), l)
}

// CreateIdea allocates an IDEA-NNN id and persists the record.
func (s *Store) CreateIdea(idea Idea, now time.Time) (Idea, error) {
	id, err := s.ids.Next(KindIdea)
	if err != nil {
		return Idea{}, err
	}
	idea.ID = id
	idea.CreatedAt = now
	if err := writeAtomic(filepath.Join(s.ideasDir(), id+".yaml"), idea); err != nil {
		return Idea{}, err
	}
	return idea, nil
}

// GetIdea reads an Idea Record by id.
func (s *Store) GetIdea(id string) (Idea, error) {
	var idea Idea
	err := readYAML(filepath.Join(s.ideasDir(), id+".yaml"), &idea)
	return idea, err
}

// ApproveIdea promotes an Idea Record's sketch into a pending Strategy
// Record, gated by the same lineage cycle check proposal approval uses
// (spec §9), then deletes the Idea (its only non-TTL destruction path).
func (s *Store) ApproveIdea(id string, now time.Time) (Strategy, error) {
	idea, err := s.GetIdea(id)
	if err != nil {
		return Strategy{}, err
	}

	if len(idea.Lineage.Parents) > 0 {
		cycle, err := WouldIntroduceCycle(idea.ID, idea.Lineage.Parents, s.LineageLookup())
		if err != nil {
			return Strategy{}, err
		}
		if cycle {
			return Strategy{}, apperrors.NewConflictError(id + " approval would introduce a lineage cycle")
		}
	}

	strat, err := s.CreateStrategy(Strategy{
		Name:       id + " (" + idea.Persona + ")",
		Definition: idea.Sketch,
		Lineage:    idea.Lineage,
		Provenance: Provenance{SourceRef: "idea:" + id, Excerpt: idea.Rationale},
	}, now)
	if err != nil {
		return Strategy{}, err
	}

	if err := s.DeleteIdea(id); err != nil {
		return Strategy{}, err
	}
	return strat, nil
}

// DeleteIdea removes an Idea Record, its only destruction paths being
// approval (promoted to a Strategy) or TTL prune (spec §3.3).
func (s *Store) DeleteIdea(id string) error {
	err := os.Remove(filepath.Join(s.ideasDir(), id+".yaml"))
	if os.IsNotExist(err) {
		return apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "removing idea %s", id)
	}
	return nil
}

// ListIdeas returns every persisted Idea Record.
func (s *Store) ListIdeas() ([]Idea, error) {
	entries, err := os.ReadDir(s.ideasDir())
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "listing ideas")
	}
	out := make([]Idea, 0, len(entries))
	for _, entry := range entries {
		var idea Idea
		if err := readYAML(filepath.Join(s.ideasDir(), entry.Name()), &idea); err != nil {
			return nil, err
		}
		out = append(out, idea)
	}
	return out, nil
}

// CreateProposal allocates a PROP-NNN id and persists the record.
func (s *Store) CreateProposal(p Proposal, now time.Time) (Proposal, error) {
	id, err := s.ids.Next(KindProposal)
	if err != nil {
		return Proposal{}, err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = ProposalPending
	}
	if err := writeAtomic(filepath.Join(s.proposalsDir(), id+".yaml"), p); err != nil {
		return Proposal{}, err
	}
	return p, nil
}

// GetProposal reads a Proposal Record by id.
func (s *Store) GetProposal(id string) (Proposal, error) {
	var p Proposal
	err := readYAML(filepath.Join(s.proposalsDir(), id+".yaml"), &p)
	return p, err
}

// UpdateProposal rewrites an existing Proposal Record (status changes,
// rejection reasons); callers are expected to have read-modify-written
// from a fresh GetProposal.
func (s *Store) UpdateProposal(p Proposal, now time.Time) error {
	p.UpdatedAt = now
	return writeAtomic(filepath.Join(s.proposalsDir(), p.ID+".yaml"), p)
}

// DeleteProposal removes a Proposal Record; its only destruction paths
// are a human decision recorded elsewhere (approve/reject leave the
// record in place as an audit trail) or TTL prune of a `deferred`
// proposal (spec §3.1, §9).
func (s *Store) DeleteProposal(id string) error {
	err := os.Remove(filepath.Join(s.proposalsDir(), id+".yaml"))
	if os.IsNotExist(err) {
		return apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "removing proposal %s", id)
	}
	return nil
}

// ListProposals returns every persisted Proposal Record.
func (s *Store) ListProposals() ([]Proposal, error) {
	entries, err := os.ReadDir(s.proposalsDir())
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "listing proposals")
	}
	out := make([]Proposal, 0, len(entries))
	for _, entry := range entries {
		var p Proposal
		if err := readYAML(filepath.Join(s.proposalsDir(), entry.Name()), &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListStrategies returns every Strategy Record in the working partition
// (archived/rejected records included, since they remain readable for
// audit at their original path).
func (s *Store) ListStrategies() ([]Strategy, error) {
	entries, err := os.ReadDir(s.strategiesDir())
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "listing strategies")
	}
	out := make([]Strategy, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue // skip the archive/ subdirectory
		}
		var strat Strategy
		if err := readYAML(filepath.Join(s.strategiesDir(), entry.Name()), &strat); err != nil {
			return nil, err
		}
		out = append(out, strat)
	}
	return out, nil
}

// ResolveLineage returns the transitive ancestor ids of a Strategy Record.
func (s *Store) ResolveLineage(id string) ([]string, error) {
	return ResolveLineage(id, s.LineageLookup())
}

// LineageLookup exposes the Store's strategy lookup as a StrategyLookup,
// for callers outside this package that need to run their own
// cycle/ancestry checks (e.g. pkg/proposal's approval gate).
func (s *Store) LineageLookup() StrategyLookup {
	return func(lookupID string) (Lineage, error) {
		strat, err := s.GetStrategy(lookupID)
		if err != nil {
			return Lineage{}, err
		}
		return strat.Lineage, nil
	}
}
