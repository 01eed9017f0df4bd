package bayes

import "fmt"

// cptFactor converts a variable's CPT into a factor over [parents..., variable].
// The CPT's flat layout (parent rows × states) matches the factor's row-major
// layout with the variable as the fastest index, so values carry over as-is.
func (m *Model) cptFactor(v Variable) *factor {
	vars := make([]string, 0, len(v.Parents)+1)
	card := make([]int, 0, len(v.Parents)+1)
	for _, p := range v.Parents {
		pv, _ := m.net.Variable(p)
		vars = append(vars, p)
		card = append(card, len(pv.States))
	}
	vars = append(vars, v.Name)
	card = append(card, len(v.States))

	values := make([]float64, len(m.cpts[v.Name].Values))
	copy(values, m.cpts[v.Name].Values)
	return &factor{vars: vars, card: card, values: values}
}

// Query computes the exact posterior P(target | evidence) by variable
// elimination and returns it as a state → probability map. Evidence may
// cover any subset of the remaining variables. Unknown variables or states
// are errors, as is evidence that contradicts the model (zero probability).
func (m *Model) Query(target string, evidence Observation) (map[string]float64, error) {
	tv, ok := m.net.Variable(target)
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", target)
	}
	if _, ok := evidence[target]; ok {
		return nil, fmt.Errorf("target %q appears in evidence", target)
	}

	evidenceIdx := make(map[string]int, len(evidence))
	for name, state := range evidence {
		si := m.net.StateIndex(name, state)
		if si < 0 {
			if _, ok := m.net.Variable(name); !ok {
				return nil, fmt.Errorf("unknown variable %q", name)
			}
			return nil, fmt.Errorf("variable %q: unknown state %q", name, state)
		}
		evidenceIdx[name] = si
	}

	// One factor per variable, reduced by evidence up front.
	factors := make([]*factor, 0, len(m.net.vars))
	for _, v := range m.net.vars {
		f := m.cptFactor(v)
		for name, si := range evidenceIdx {
			f = reduce(f, name, si)
		}
		factors = append(factors, f)
	}

	// Eliminate every hidden variable (not target, not evidence).
	for _, v := range m.net.vars {
		if v.Name == target {
			continue
		}
		if _, ok := evidenceIdx[v.Name]; ok {
			continue
		}
		factors = eliminate(factors, v.Name)
	}

	// Multiply what remains into a factor over the target alone.
	result := factors[0]
	for _, f := range factors[1:] {
		result = product(result, f)
	}

	if len(result.vars) != 1 || result.vars[0] != target {
		return nil, fmt.Errorf("elimination left unexpected scope %v", result.vars)
	}

	total := 0.0
	for _, v := range result.values {
		total += v
	}
	if total == 0 {
		return nil, fmt.Errorf("evidence has zero probability under the model")
	}

	posterior := make(map[string]float64, len(tv.States))
	for i, s := range tv.States {
		posterior[s] = result.values[i] / total
	}
	return posterior, nil
}

// eliminate multiplies together all factors mentioning name, sums name out,
// and returns the reduced factor list.
func eliminate(factors []*factor, name string) []*factor {
	var touched *factor
	rest := factors[:0:0]
	for _, f := range factors {
		if indexOf(f.vars, name) < 0 {
			rest = append(rest, f)
			continue
		}
		if touched == nil {
			touched = f
		} else {
			touched = product(touched, f)
		}
	}
	if touched == nil {
		return factors
	}
	return append(rest, marginalize(touched, name))
}

// MostLikely returns the argmax state of P(target | evidence) and its
// probability. Ties resolve to the state declared first.
func (m *Model) MostLikely(target string, evidence Observation) (string, float64, error) {
	posterior, err := m.Query(target, evidence)
	if err != nil {
		return "", 0, err
	}

	tv, _ := m.net.Variable(target)
	best := ""
	bestP := -1.0
	for _, s := range tv.States {
		if posterior[s] > bestP {
			best = s
			bestP = posterior[s]
		}
	}
	return best, bestP, nil
}
