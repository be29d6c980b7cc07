package schema

import "fmt"

// Registry is the process-wide, read-only table of searchable entities and
// their field descriptors. It is built once at startup and never mutated
// afterwards, so it is safe for unlimited concurrent readers.
type Registry struct {
	entities map[string]entityDef
}

type entityDef struct {
	fields     []Field
	byName     map[string]Field
	textFields []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]entityDef)}
}

// Register adds an entity with its field descriptors and the ordered list
// of fields the free-text search spans. Registration happens at startup
// only; Register is not safe to call concurrently with readers.
func (r *Registry) Register(entity string, fields []Field, textFields []string) error {
	if entity == "" {
		return fmt.Errorf("entity name is required")
	}
	if _, ok := r.entities[entity]; ok {
		return fmt.Errorf("entity %q already registered", entity)
	}
	if len(fields) == 0 {
		return fmt.Errorf("entity %q declares no fields", entity)
	}

	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		if _, dup := byName[f.Name()]; dup {
			return fmt.Errorf("entity %q declares field %q twice", entity, f.Name())
		}
		byName[f.Name()] = f
	}
	for _, tf := range textFields {
		if _, ok := byName[tf]; !ok {
			return fmt.Errorf("entity %q free-text field %q is not declared", entity, tf)
		}
	}

	fs := make([]Field, len(fields))
	copy(fs, fields)
	tfs := make([]string, len(textFields))
	copy(tfs, textFields)

	r.entities[entity] = entityDef{fields: fs, byName: byName, textFields: tfs}
	return nil
}

// Registered reports whether the entity is known.
func (r *Registry) Registered(entity string) bool {
	_, ok := r.entities[entity]
	return ok
}

// Entities returns the registered entity names.
func (r *Registry) Entities() []string {
	out := make([]string, 0, len(r.entities))
	for name := range r.entities {
		out = append(out, name)
	}
	return out
}

// Describe looks up a single field descriptor.
func (r *Registry) Describe(entity, field string) (Field, bool) {
	def, ok := r.entities[entity]
	if !ok {
		return Field{}, false
	}
	f, ok := def.byName[field]
	return f, ok
}

// FieldsFor returns all field descriptors of an entity, in declaration order.
func (r *Registry) FieldsFor(entity string) ([]Field, bool) {
	def, ok := r.entities[entity]
	if !ok {
		return nil, false
	}
	out := make([]Field, len(def.fields))
	copy(out, def.fields)
	return out, true
}

// TextFields returns the ordered free-text search fields of an entity.
func (r *Registry) TextFields(entity string) []string {
	def, ok := r.entities[entity]
	if !ok {
		return nil
	}
	out := make([]string, len(def.textFields))
	copy(out, def.textFields)
	return out
}
