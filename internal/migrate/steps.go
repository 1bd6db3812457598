package migrate

import (
	"github.com/loykin/relaunch/internal/confstore"
)

// Section and field names touched by the legacy-key migrations.
const (
	sectionNoteLinker = "note_linker"
	sectionMassLinker = "mass_linker"
	sectionStability  = "stability"
	sectionGate       = "example_gate"

	fieldEnabled        = "enabled"
	fieldCopyLabelField = "copy_label_field"
	fieldLabelField     = "label_field"
	fieldRules          = "rules"
	fieldKeyField       = "key_field"
	fieldNoteType       = "note_type"
	fieldNoteTypeID     = "note_type_id"
	fieldTemplate       = "template"
	fieldTemplateOrd    = "template_ord"
)

// gateLegacyKeyFields is the declared priority order for key_field
// canonicalization: when both legacy names carry a value, the first one
// listed here wins.
var gateLegacyKeyFields = []string{"example_key_field", "vocab_key_field"}

// absorbNoteLinker folds the deprecated note_linker section into mass_linker
// and drops the deprecated stability section. Legacy values win over values
// already present in the destination, except for rules entries where an
// existing destination key is kept. The raw copy_label_field name never
// survives in the destination. Reports changed when either deprecated
// section existed.
func absorbNoteLinker(doc confstore.Document) bool {
	changed := false

	if legacyRaw, ok := doc[sectionNoteLinker]; ok {
		dst, hasDst := doc.Section(sectionMassLinker)
		if !hasDst {
			dst = map[string]any{}
		}
		if legacy, ok := legacyRaw.(map[string]any); ok {
			if v, ok := legacy[fieldEnabled]; ok {
				dst[fieldEnabled] = v
			}
			if v, ok := legacy[fieldCopyLabelField]; ok {
				dst[fieldLabelField] = v
			} else if v, ok := dst[fieldCopyLabelField]; ok {
				// Destination still carries the old name; rename it.
				dst[fieldLabelField] = v
			}
			delete(dst, fieldCopyLabelField)

			if legacyRules, ok := legacy[fieldRules].(map[string]any); ok {
				dstRules, ok := dst[fieldRules].(map[string]any)
				if !ok {
					dstRules = map[string]any{}
				}
				for k, v := range legacyRules {
					if _, exists := dstRules[k]; !exists {
						dstRules[k] = v
					}
				}
				dst[fieldRules] = dstRules
			}
		}
		doc[sectionMassLinker] = dst
		delete(doc, sectionNoteLinker)
		changed = true
	}

	if _, ok := doc[sectionStability]; ok {
		delete(doc, sectionStability)
		changed = true
	}
	return changed
}

// canonicalizeGateKeyField moves a value held under either legacy key-field
// name in example_gate to the canonical key_field and removes the legacy
// names. The first legacy name in priority order wins and overwrites any
// pre-existing key_field, matching the legacy-wins policy of the absorption
// step.
func canonicalizeGateKeyField(doc confstore.Document) bool {
	gate, ok := doc.Section(sectionGate)
	if !ok {
		return false
	}
	changed := false
	var winner any
	hasWinner := false
	for _, name := range gateLegacyKeyFields {
		if v, ok := gate[name]; ok {
			if !hasWinner {
				winner = v
				hasWinner = true
			}
			delete(gate, name)
			changed = true
		}
	}
	if hasWinner {
		gate[fieldKeyField] = winner
	}
	return changed
}

// migrateNoteTypeNamesToIDs rewrites mass_linker rules carrying a note_type
// name to carry note_type_id instead, resolved through the host runtime.
// Unresolvable names are left untouched. No-op without a resolver.
func migrateNoteTypeNamesToIDs(r Resolver, doc confstore.Document) bool {
	if r == nil {
		return false
	}
	rules, ok := linkerRules(doc)
	if !ok {
		return false
	}
	changed := false
	for _, rv := range rules {
		rule, ok := rv.(map[string]any)
		if !ok {
			continue
		}
		name, ok := rule[fieldNoteType].(string)
		if !ok {
			continue
		}
		id, ok := r.NoteTypeID(name)
		if !ok {
			continue
		}
		rule[fieldNoteTypeID] = id
		delete(rule, fieldNoteType)
		changed = true
	}
	return changed
}

// migrateTemplateNamesToOrds rewrites mass_linker rules carrying a template
// name to carry template_ord, resolved within the rule's note type. Runs
// after the note-type step so rules already expose note_type_id. No-op
// without a resolver.
func migrateTemplateNamesToOrds(r Resolver, doc confstore.Document) bool {
	if r == nil {
		return false
	}
	rules, ok := linkerRules(doc)
	if !ok {
		return false
	}
	changed := false
	for _, rv := range rules {
		rule, ok := rv.(map[string]any)
		if !ok {
			continue
		}
		name, ok := rule[fieldTemplate].(string)
		if !ok {
			continue
		}
		ntid, ok := asInt64(rule[fieldNoteTypeID])
		if !ok {
			continue
		}
		ord, ok := r.TemplateOrd(ntid, name)
		if !ok {
			continue
		}
		rule[fieldTemplateOrd] = ord
		delete(rule, fieldTemplate)
		changed = true
	}
	return changed
}

func linkerRules(doc confstore.Document) (map[string]any, bool) {
	sec, ok := doc.Section(sectionMassLinker)
	if !ok {
		return nil, false
	}
	rules, ok := sec[fieldRules].(map[string]any)
	return rules, ok
}

// asInt64 accepts the numeric shapes a rule value can take: int64 when set
// in-memory this pass, float64 after a JSON round trip.
func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}
