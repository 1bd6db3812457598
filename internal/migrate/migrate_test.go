package migrate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/relaunch/internal/confstore"
)

func writeDoc(t *testing.T, path string, doc confstore.Document) {
	t.Helper()
	if err := confstore.New(path).Save(doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func legacyDoc() confstore.Document {
	return confstore.Document{
		"note_linker": map[string]any{
			"enabled":          false,
			"copy_label_field": "X",
			"rules":            map[string]any{"1": map[string]any{}},
		},
		"mass_linker": map[string]any{
			"copy_label_field": "Y",
			"rules":            map[string]any{"2": map[string]any{}},
		},
		"stability":    map[string]any{},
		"example_gate": map[string]any{"example_key_field": "E"},
		"other":        map[string]any{"keep": true},
	}
}

func TestMigrateLegacyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeDoc(t, path, legacyDoc())
	store := confstore.New(path)

	reg := New()
	changed, results, err := reg.MigrateLegacyKeys(store)
	if err != nil {
		t.Fatalf("MigrateLegacyKeys: %v", err)
	}
	if !changed {
		t.Fatalf("expected changed=true on first pass")
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 step results, got %d", len(results))
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, gone := range []string{"note_linker", "stability"} {
		if _, ok := doc[gone]; ok {
			t.Fatalf("%s must not survive migration", gone)
		}
	}
	ml, _ := doc.Section("mass_linker")
	if ml["enabled"] != false || ml["label_field"] != "X" {
		t.Fatalf("mass_linker not absorbed correctly: %+v", ml)
	}
	gate, _ := doc.Section("example_gate")
	if gate["key_field"] != "E" {
		t.Fatalf("example_gate not canonicalized: %+v", gate)
	}
	if _, ok := doc.Section("other"); !ok {
		t.Fatalf("unrelated section lost")
	}
}

func TestMigrateLegacyKeysIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeDoc(t, path, legacyDoc())
	store := confstore.New(path)
	reg := New()

	changed, _, err := reg.MigrateLegacyKeys(store)
	if err != nil || !changed {
		t.Fatalf("first pass: changed=%v err=%v", changed, err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	changed, results, err := reg.MigrateLegacyKeys(store)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if changed {
		t.Fatalf("second pass must report changed=false")
	}
	for _, res := range results {
		if res.Changed {
			t.Fatalf("step %s reported a change on second pass", res.Step)
		}
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("persisted bytes differ after no-change pass")
	}
}

func TestMigrateLegacyKeysNoChangeNoWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeDoc(t, path, confstore.Document{"mass_linker": map[string]any{"enabled": true}})
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	changed, _, err := New().MigrateLegacyKeys(confstore.New(path))
	if err != nil {
		t.Fatalf("MigrateLegacyKeys: %v", err)
	}
	if changed {
		t.Fatalf("already-migrated document must report changed=false")
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(info.ModTime()) {
		t.Fatalf("document rewritten despite no change")
	}
}

func TestMigrateLegacyKeysMissingDocument(t *testing.T) {
	store := confstore.New(filepath.Join(t.TempDir(), "missing.json"))
	_, _, err := New().MigrateLegacyKeys(store)
	if !errors.Is(err, confstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMigrateLegacyKeysMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, _ := os.ReadFile(path)
	_, _, err := New().MigrateLegacyKeys(confstore.New(path))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("failed pass must not touch the document")
	}
}

func TestMigrateLegacyKeysWithResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeDoc(t, path, confstore.Document{
		"mass_linker": map[string]any{
			"rules": map[string]any{
				"1": map[string]any{"note_type": "Basic", "template": "Card 1"},
			},
		},
	})
	store := confstore.New(path)
	r := stubResolver{
		noteTypes: map[string]int64{"Basic": 42},
		templates: map[string]int{"Card 1": 0},
	}

	changed, _, err := New(WithResolver(r)).MigrateLegacyKeys(store)
	if err != nil || !changed {
		t.Fatalf("pass with resolver: changed=%v err=%v", changed, err)
	}
	doc, _ := store.Load()
	rule := doc["mass_linker"].(map[string]any)["rules"].(map[string]any)["1"].(map[string]any)
	// JSON round trip turns numbers into float64.
	if rule["note_type_id"] != float64(42) || rule["template_ord"] != float64(0) {
		t.Fatalf("runtime-dependent rewrite wrong: %+v", rule)
	}
}
