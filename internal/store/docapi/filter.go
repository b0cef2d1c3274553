package docapi

import "encoding/json"

// Filter is an equality-only predicate set over document fields. The zero
// value marshals to {} and matches every document.
type Filter struct {
	conds []condition
}

type condition struct {
	field string
	value any
}

func (f Filter) Eq(field string, value any) Filter {
	conds := make([]condition, len(f.conds), len(f.conds)+1)
	copy(conds, f.conds)
	return Filter{conds: append(conds, condition{field: field, value: value})}
}

func (f Filter) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(f.conds))
	for _, c := range f.conds {
		doc[c.field] = c.value
	}
	return json.Marshal(doc)
}

// Sort orders results by a single field. The zero value marshals to {}
// and leaves store order unspecified.
type Sort struct {
	Field      string
	Descending bool
}

func (s Sort) MarshalJSON() ([]byte, error) {
	if s.Field == "" {
		return []byte("{}"), nil
	}
	direction := 1
	if s.Descending {
		direction = -1
	}
	return json.Marshal(map[string]int{s.Field: direction})
}
