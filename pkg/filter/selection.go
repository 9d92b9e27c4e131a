package filter

// Selection carries the raw filter selections of every dimension, as
// received from URL state, CLI flags or API queries.
type Selection struct {
	ContentProviders                  []string `json:"contentProviders,omitempty" yaml:"contentProviders,omitempty"`
	ContentConsumers                  []string `json:"contentConsumers,omitempty" yaml:"contentConsumers,omitempty"`
	ExtensionPoints                   []string `json:"extensionPoints,omitempty" yaml:"extensionPoints,omitempty"`
	ContentConsumersForExtensionPoint []string `json:"contentConsumersForExtensionPoint,omitempty" yaml:"contentConsumersForExtensionPoint,omitempty"`
}

// Candidates is the full candidate set of every dimension for one mode.
type Candidates struct {
	ContentProviders                  []string `json:"contentProviders"`
	ContentConsumers                  []string `json:"contentConsumers"`
	ExtensionPoints                   []string `json:"extensionPoints"`
	ContentConsumersForExtensionPoint []string `json:"contentConsumersForExtensionPoint"`
}

// Effective is a fully resolved selection.
type Effective struct {
	Providers               Set
	Consumers               Set
	ExtensionPoints         Set
	ExtensionPointConsumers Set
}

// IsEmpty reports whether nothing is selected in any dimension.
func (s Selection) IsEmpty() bool {
	return len(s.ContentProviders) == 0 && len(s.ContentConsumers) == 0 &&
		len(s.ExtensionPoints) == 0 && len(s.ContentConsumersForExtensionPoint) == 0
}

// Resolve resolves every dimension against its candidates.
func (s Selection) Resolve(c Candidates) Effective {
	return Effective{
		Providers:               Resolve(s.ContentProviders, c.ContentProviders),
		Consumers:               Resolve(s.ContentConsumers, c.ContentConsumers),
		ExtensionPoints:         Resolve(s.ExtensionPoints, c.ExtensionPoints),
		ExtensionPointConsumers: Resolve(s.ContentConsumersForExtensionPoint, c.ContentConsumersForExtensionPoint),
	}
}

// ResolveUnbounded resolves every dimension without candidates: only empty
// selections collapse to "no filter".
func (s Selection) ResolveUnbounded() Effective {
	return s.Resolve(Candidates{})
}

// Normalize returns the selection with every dimension deduplicated and
// sorted.
func (s Selection) Normalize() Selection {
	return Selection{
		ContentProviders:                  Dedupe(s.ContentProviders),
		ContentConsumers:                  Dedupe(s.ContentConsumers),
		ExtensionPoints:                   Dedupe(s.ExtensionPoints),
		ContentConsumersForExtensionPoint: Dedupe(s.ContentConsumersForExtensionPoint),
	}
}

// Selection returns the canonical selection of an effective filter: sorted
// ids, with unfiltered dimensions empty. Equal effective filters always
// yield equal selections.
func (e Effective) Selection() Selection {
	return Selection{
		ContentProviders:                  e.Providers.IDs(),
		ContentConsumers:                  e.Consumers.IDs(),
		ExtensionPoints:                   e.ExtensionPoints.IDs(),
		ContentConsumersForExtensionPoint: e.ExtensionPointConsumers.IDs(),
	}
}

// Unfiltered reports whether no dimension is filtered.
func (e Effective) Unfiltered() bool {
	return e.Providers.All() && e.Consumers.All() &&
		e.ExtensionPoints.All() && e.ExtensionPointConsumers.All()
}
