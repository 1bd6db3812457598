// Package migrate rewrites a persisted configuration document when its
// schema changes across versions: legacy sections are absorbed into their
// replacements, renamed fields are canonicalized, and name-keyed fields are
// rewritten to stable IDs when the host runtime is available. Every step is
// idempotent, so running a pass over an already-migrated document changes
// nothing.
package migrate

import (
	"log/slog"
	"time"

	"github.com/loykin/relaunch/internal/confstore"
)

// Step is a named, deterministic transformation over the document. Apply
// mutates the document in place and reports whether anything changed.
type Step struct {
	Name  string
	Apply func(confstore.Document) bool
}

// StepResult records the outcome of one step within a pass.
type StepResult struct {
	Step      string    `json:"step"`
	Changed   bool      `json:"changed"`
	AppliedAt time.Time `json:"applied_at"`
}

// Registry holds the fixed, ordered migration steps. Order matters: renames
// run before merges that read the renamed fields, and the note-type step
// runs before the template step that keys off note_type_id.
type Registry struct {
	resolver Resolver
	logger   *slog.Logger
	steps    []Step
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver injects the host-runtime capability. Without it the two
// runtime-dependent steps report no change.
func WithResolver(r Resolver) Option {
	return func(reg *Registry) { reg.resolver = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(reg *Registry) {
		if l != nil {
			reg.logger = l
		}
	}
}

func New(opts ...Option) *Registry {
	reg := &Registry{logger: slog.Default()}
	for _, o := range opts {
		o(reg)
	}
	reg.steps = []Step{
		{Name: "absorb_note_linker", Apply: absorbNoteLinker},
		{Name: "canonicalize_gate_key_field", Apply: canonicalizeGateKeyField},
		{Name: "migrate_note_type_names_to_ids", Apply: func(doc confstore.Document) bool {
			return migrateNoteTypeNamesToIDs(reg.resolver, doc)
		}},
		{Name: "migrate_template_names_to_ords", Apply: func(doc confstore.Document) bool {
			return migrateTemplateNamesToOrds(reg.resolver, doc)
		}},
	}
	return reg
}

// Apply runs every step in order against the in-memory document and returns
// whether any step changed it, plus per-step results.
func (reg *Registry) Apply(doc confstore.Document) (bool, []StepResult) {
	changed := false
	results := make([]StepResult, 0, len(reg.steps))
	for _, st := range reg.steps {
		c := st.Apply(doc)
		reg.logger.Debug("migration step applied", "step", st.Name, "changed", c)
		changed = changed || c
		results = append(results, StepResult{Step: st.Name, Changed: c, AppliedAt: time.Now().UTC()})
	}
	return changed, results
}

// MigrateLegacyKeys loads the document from store, applies the steps, and
// writes back only when something changed. Store failures abort the pass;
// the document on disk is never partially written.
func (reg *Registry) MigrateLegacyKeys(store *confstore.Store) (bool, []StepResult, error) {
	doc, err := store.Load()
	if err != nil {
		return false, nil, err
	}
	changed, results := reg.Apply(doc)
	if !changed {
		return false, results, nil
	}
	if err := store.Save(doc); err != nil {
		return false, results, err
	}
	reg.logger.Info("config document migrated", "path", store.Path())
	return true, results, nil
}
