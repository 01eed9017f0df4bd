// Package bayes implements a discrete Bayesian network for probabilistic
// fire-risk inference: a fixed DAG over categorical variables, conditional
// probability tables fitted by maximum likelihood, and exact posterior
// queries by variable elimination.
//
// All computation is pure Go. Factors are dense float64 tables; the
// networks involved are small (single-digit variables), so no sparse or
// approximate machinery is needed.
package bayes

import "fmt"

// Variable is one node in the network: a named categorical variable with an
// ordered state list and zero or more parent variables.
type Variable struct {
	Name    string
	States  []string
	Parents []string
}

// Network is a validated DAG of variables. Construction checks that names
// and states are unique, parents are defined, and no cycle exists.
type Network struct {
	vars   []Variable
	byName map[string]int
}

// New validates the variable set and returns a Network.
func New(vars []Variable) (*Network, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("network has no variables")
	}

	byName := make(map[string]int, len(vars))
	for i, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("variable %d: missing name", i)
		}
		if _, ok := byName[v.Name]; ok {
			return nil, fmt.Errorf("duplicate variable %q", v.Name)
		}
		if len(v.States) < 2 {
			return nil, fmt.Errorf("variable %q: needs at least 2 states, got %d", v.Name, len(v.States))
		}
		seen := make(map[string]bool, len(v.States))
		for _, s := range v.States {
			if seen[s] {
				return nil, fmt.Errorf("variable %q: duplicate state %q", v.Name, s)
			}
			seen[s] = true
		}
		byName[v.Name] = i
	}

	for _, v := range vars {
		for _, p := range v.Parents {
			if _, ok := byName[p]; !ok {
				return nil, fmt.Errorf("variable %q: undefined parent %q", v.Name, p)
			}
		}
	}

	n := &Network{vars: vars, byName: byName}
	if err := n.checkAcyclic(); err != nil {
		return nil, err
	}
	return n, nil
}

// checkAcyclic runs a depth-first cycle check over parent edges.
func (n *Network) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make([]int, len(n.vars))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visiting:
			return fmt.Errorf("cycle involving variable %q", n.vars[i].Name)
		case done:
			return nil
		}
		state[i] = visiting
		for _, p := range n.vars[i].Parents {
			if err := visit(n.byName[p]); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}

	for i := range n.vars {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// Variables returns the network's variables in declaration order.
func (n *Network) Variables() []Variable {
	return n.vars
}

// Variable looks up a variable by name.
func (n *Network) Variable(name string) (Variable, bool) {
	i, ok := n.byName[name]
	if !ok {
		return Variable{}, false
	}
	return n.vars[i], true
}

// StateIndex returns the index of a state within a variable's state list,
// or -1 if either the variable or the state is unknown.
func (n *Network) StateIndex(variable, state string) int {
	v, ok := n.Variable(variable)
	if !ok {
		return -1
	}
	for i, s := range v.States {
		if s == state {
			return i
		}
	}
	return -1
}

// Fire-risk network variable and state names. The structure is three
// independent condition variables, each a parent of the risk variable.
const (
	VarHeat     = "heat"
	VarHumidity = "humidity"
	VarWind     = "wind"
	VarRisk     = "risk"

	HeatNormal  = "normal"
	HeatHigh    = "high"
	HeatExtreme = "extreme"

	HumidityDry    = "dry"
	HumidityNormal = "normal"
	HumidityHumid  = "humid"

	WindWeak     = "weak"
	WindModerate = "moderate"
	WindStrong   = "strong"

	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// FireRisk returns the fixed fire-risk network:
// heat → risk, humidity → risk, wind → risk.
func FireRisk() *Network {
	n, err := New([]Variable{
		{Name: VarHeat, States: []string{HeatNormal, HeatHigh, HeatExtreme}},
		{Name: VarHumidity, States: []string{HumidityDry, HumidityNormal, HumidityHumid}},
		{Name: VarWind, States: []string{WindWeak, WindModerate, WindStrong}},
		{Name: VarRisk, States: []string{RiskLow, RiskMedium, RiskHigh}, Parents: []string{VarHeat, VarHumidity, VarWind}},
	})
	if err != nil {
		// Static definition; cannot fail.
		panic(err)
	}
	return n
}
