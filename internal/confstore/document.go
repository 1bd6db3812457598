package confstore

// Document is a JSON-like configuration tree: string keys mapping to nested
// maps and scalars. The store imposes no schema beyond the top level being a
// mapping; section names are the business of callers.
type Document map[string]any

// Section returns the named top-level section when it is a mapping.
func (d Document) Section(name string) (map[string]any, bool) {
	v, ok := d[name]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Clone returns a deep copy of the document. Maps and slices are copied;
// scalars are shared (JSON scalars are immutable).
func (d Document) Clone() Document {
	return Document(cloneMap(d))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return t
	}
}
