package cluster

// Match is one anomalous relationship: the other document's label and the
// estimated similarity.
type Match struct {
	Label      string  `json:"label" yaml:"label"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// Clusters maps a label to its anomalous matches. Labels keep the order in
// which they were first added.
type Clusters struct {
	order   []string
	entries map[string][]Match
}

func newClusters() *Clusters {
	return &Clusters{entries: make(map[string][]Match)}
}

func (c *Clusters) add(label string, m Match) {
	if _, ok := c.entries[label]; !ok {
		c.order = append(c.order, label)
	}
	c.entries[label] = append(c.entries[label], m)
}

// Len returns the number of labels with at least one match.
func (c *Clusters) Len() int {
	return len(c.order)
}

// Labels returns the labels in insertion order.
func (c *Clusters) Labels() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Matches returns the matches recorded under label, or nil.
func (c *Clusters) Matches(label string) []Match {
	ms, ok := c.entries[label]
	if !ok {
		return nil
	}
	out := make([]Match, len(ms))
	copy(out, ms)
	return out
}

// Map returns a copy of the clusters as a plain map.
func (c *Clusters) Map() map[string][]Match {
	out := make(map[string][]Match, len(c.entries))
	for _, label := range c.order {
		out[label] = c.Matches(label)
	}
	return out
}
