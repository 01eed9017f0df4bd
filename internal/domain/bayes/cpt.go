package bayes

import "fmt"

// CPT is the conditional probability table for one variable given its
// parents. Values is a flat table: one probability row per parent
// configuration, laid out as Values[parentIndex*card + stateIndex].
// Parent configurations index row-major over the parent list, first
// parent slowest.
type CPT struct {
	Variable string
	Values   []float64
}

// Model is a fitted network: the structure plus one CPT per variable.
type Model struct {
	net     *Network
	cpts    map[string]*CPT
	samples int
}

// FitOptions controls CPT estimation.
type FitOptions struct {
	// Laplace enables add-one smoothing: every (parent config, state)
	// cell starts at count 1 instead of 0, so unseen configurations get
	// a proper, non-uniform-by-accident distribution.
	Laplace bool
}

// Network returns the model's network structure.
func (m *Model) Network() *Network {
	return m.net
}

// Samples returns the number of observations the model was fitted from.
func (m *Model) Samples() int {
	return m.samples
}

// CPT returns the fitted table for a variable, or nil if unknown.
func (m *Model) CPT(variable string) *CPT {
	return m.cpts[variable]
}

// parentConfigs returns the number of parent configurations for a variable.
func (n *Network) parentConfigs(v Variable) int {
	count := 1
	for _, p := range v.Parents {
		pv, _ := n.Variable(p)
		count *= len(pv.States)
	}
	return count
}

// parentIndex computes the row index for an observation's parent states.
// Returns an error naming the missing or unknown assignment.
func (n *Network) parentIndex(v Variable, obs Observation) (int, error) {
	idx := 0
	for _, p := range v.Parents {
		pv, _ := n.Variable(p)
		state, ok := obs[p]
		if !ok {
			return 0, fmt.Errorf("observation missing variable %q", p)
		}
		si := n.StateIndex(p, state)
		if si < 0 {
			return 0, fmt.Errorf("variable %q: unknown state %q", p, state)
		}
		idx = idx*len(pv.States) + si
	}
	return idx, nil
}

// Fit estimates CPTs from complete observations by maximum likelihood.
// Every observation must assign a known state to every network variable.
// Without smoothing, a parent configuration never observed yields a
// uniform row over the variable's states.
func Fit(n *Network, observations []Observation, opts FitOptions) (*Model, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("no observations")
	}

	// counts[variable][parentIndex*card + stateIndex]
	counts := make(map[string][]float64, len(n.vars))
	for _, v := range n.vars {
		rows := n.parentConfigs(v)
		table := make([]float64, rows*len(v.States))
		if opts.Laplace {
			for i := range table {
				table[i] = 1
			}
		}
		counts[v.Name] = table
	}

	for oi, obs := range observations {
		for _, v := range n.vars {
			state, ok := obs[v.Name]
			if !ok {
				return nil, fmt.Errorf("observation %d: missing variable %q", oi, v.Name)
			}
			si := n.StateIndex(v.Name, state)
			if si < 0 {
				return nil, fmt.Errorf("observation %d: variable %q: unknown state %q", oi, v.Name, state)
			}
			pi, err := n.parentIndex(v, obs)
			if err != nil {
				return nil, fmt.Errorf("observation %d: %w", oi, err)
			}
			counts[v.Name][pi*len(v.States)+si]++
		}
	}

	cpts := make(map[string]*CPT, len(n.vars))
	for _, v := range n.vars {
		card := len(v.States)
		table := counts[v.Name]
		rows := len(table) / card

		for row := 0; row < rows; row++ {
			total := 0.0
			for s := 0; s < card; s++ {
				total += table[row*card+s]
			}
			if total == 0 {
				// Unseen parent configuration, no smoothing: uniform.
				for s := 0; s < card; s++ {
					table[row*card+s] = 1.0 / float64(card)
				}
				continue
			}
			for s := 0; s < card; s++ {
				table[row*card+s] /= total
			}
		}

		cpts[v.Name] = &CPT{Variable: v.Name, Values: table}
	}

	return &Model{net: n, cpts: cpts, samples: len(observations)}, nil
}
