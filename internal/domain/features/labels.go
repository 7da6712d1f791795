package features

import "sync"

// UnseenCode is emitted for labels the fitted encoder has never seen.
const UnseenCode = -1

// LabelStatus describes how a categorical value was resolved.
type LabelStatus int

const (
	LabelKnown LabelStatus = iota
	LabelUnseen
	// LabelFitted means the field had no mapping and one was created from this value.
	LabelFitted
)

// LabelRegistry holds one label -> code mapping per categorical field.
// Codes never change once assigned.
type LabelRegistry struct {
	mu     sync.RWMutex
	fields map[string]map[string]int
}

// NewLabelRegistry builds a registry from fitted class lists, where a label's
// position in its list is its code. Repeated labels keep their first position.
func NewLabelRegistry(classes map[string][]string) *LabelRegistry {
	fields := make(map[string]map[string]int, len(classes))
	for field, labels := range classes {
		mapping := make(map[string]int, len(labels))
		for i, label := range labels {
			if _, dup := mapping[label]; dup {
				continue
			}
			mapping[label] = i
		}
		fields[field] = mapping
	}
	return &LabelRegistry{fields: fields}
}

// Encode resolves value for field. A field without a mapping is fitted on
// value, which receives code 0; later unseen values for it map to UnseenCode.
func (r *LabelRegistry) Encode(field, value string) (int, LabelStatus) {
	r.mu.RLock()
	mapping, ok := r.fields[field]
	if ok {
		code, seen := mapping[value]
		r.mu.RUnlock()
		if !seen {
			return UnseenCode, LabelUnseen
		}
		return code, LabelKnown
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if mapping, ok = r.fields[field]; ok {
		if code, seen := mapping[value]; seen {
			return code, LabelKnown
		}
		return UnseenCode, LabelUnseen
	}
	r.fields[field] = map[string]int{value: 0}
	return 0, LabelFitted
}

// Has reports whether field has a mapping.
func (r *LabelRegistry) Has(field string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fields[field]
	return ok
}

// Len returns the number of labels known for field.
func (r *LabelRegistry) Len(field string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fields[field])
}
