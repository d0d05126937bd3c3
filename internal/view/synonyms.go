package view

import "strings"

// SynonymMap reconciles the values a categorical field can take (stored
// codes and display labels) to one canonical code. Lookups are
// case-insensitive. A value with no entry is unknown and never matches.
type SynonymMap struct {
	canon map[string]string
}

// NewSynonymMap registers every code and its label as names for the code.
func NewSynonymMap[S ~string](labels map[S]string) SynonymMap {
	m := SynonymMap{canon: make(map[string]string, len(labels)*2)}
	for code, label := range labels {
		m.Add(string(code), string(code))
		if label != "" {
			m.Add(label, string(code))
		}
	}
	return m
}

// Add registers name as a synonym of code.
func (m *SynonymMap) Add(name, code string) {
	if m.canon == nil {
		m.canon = make(map[string]string)
	}
	m.canon[normalize(name)] = code
}

// Canonical returns the code for v.
func (m SynonymMap) Canonical(v string) (string, bool) {
	code, ok := m.canon[normalize(v)]
	return code, ok
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
