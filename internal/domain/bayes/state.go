package bayes

import (
	"fmt"
	"time"

	"github.com/tomas/vigia/internal/ports"
)

// State snapshots the fitted model into its serializable form.
func (m *Model) State() *ports.ModelState {
	st := &ports.ModelState{
		TrainedAt: time.Now().Unix(),
		Samples:   m.samples,
	}
	for _, v := range m.net.vars {
		st.Variables = append(st.Variables, ports.ModelVariable{
			Name:    v.Name,
			States:  v.States,
			Parents: v.Parents,
		})
		st.CPTs = append(st.CPTs, ports.ModelCPT{
			Variable: v.Name,
			Values:   m.cpts[v.Name].Values,
		})
	}
	return st
}

// FromState reconstructs a fitted model from a snapshot. The snapshot's
// structure is revalidated and every CPT checked for shape, so a corrupt
// or hand-edited snapshot fails loudly instead of producing garbage
// posteriors.
func FromState(st *ports.ModelState) (*Model, error) {
	if st == nil {
		return nil, fmt.Errorf("nil model state")
	}

	vars := make([]Variable, 0, len(st.Variables))
	for _, v := range st.Variables {
		vars = append(vars, Variable{Name: v.Name, States: v.States, Parents: v.Parents})
	}
	net, err := New(vars)
	if err != nil {
		return nil, fmt.Errorf("model state structure: %w", err)
	}

	cpts := make(map[string]*CPT, len(st.CPTs))
	for _, c := range st.CPTs {
		v, ok := net.Variable(c.Variable)
		if !ok {
			return nil, fmt.Errorf("CPT for undefined variable %q", c.Variable)
		}
		want := net.parentConfigs(v) * len(v.States)
		if len(c.Values) != want {
			return nil, fmt.Errorf("CPT %q: expected %d values, got %d", c.Variable, want, len(c.Values))
		}
		cpts[c.Variable] = &CPT{Variable: c.Variable, Values: c.Values}
	}

	for _, v := range net.vars {
		if _, ok := cpts[v.Name]; !ok {
			return nil, fmt.Errorf("missing CPT for variable %q", v.Name)
		}
	}

	return &Model{net: net, cpts: cpts, samples: st.Samples}, nil
}
