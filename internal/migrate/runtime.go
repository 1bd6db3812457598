package migrate

// Resolver is the optional host-runtime capability that maps human-readable
// names to stable identifiers. It is available or absent as a unit: a nil
// Resolver makes every runtime-dependent step a no-op, never an error, so
// the registry stays constructible and testable without the host.
type Resolver interface {
	// NoteTypeID resolves a note type name to its numeric ID.
	NoteTypeID(name string) (int64, bool)
	// TemplateOrd resolves a template name within a note type to its ordinal.
	TemplateOrd(noteTypeID int64, name string) (int, bool)
}
