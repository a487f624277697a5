package domain

// ScoringDocument is the wire form of an area's scoring configuration: the
// rubric and performance blobs as they are stored and written in
// tournament files. The area's ScoringType picks which blobs apply.
type ScoringDocument struct {
	Rubric      *RubricConfig      `json:"rubric,omitempty" yaml:"rubric,omitempty"`
	Performance *PerformanceConfig `json:"performance,omitempty" yaml:"performance,omitempty"`
}

// Config converts the document to the ScoringConfig variant for t.
func (d ScoringDocument) Config(t ScoringType) (ScoringConfig, error) {
	return NewScoringConfig(t, d.Rubric, d.Performance)
}

// DocumentOf returns the wire form of cfg.
func DocumentOf(cfg ScoringConfig) ScoringDocument {
	r, p := SplitScoringConfig(cfg)
	return ScoringDocument{Rubric: r, Performance: p}
}
