package bayes

// factor is a dense table over a set of variables. vars holds variable
// names in order; card the matching cardinalities; values is row-major
// with the last variable as the fastest-moving index.
type factor struct {
	vars   []string
	card   []int
	values []float64
}

// size returns the number of entries a factor over card has.
func tableSize(card []int) int {
	n := 1
	for _, c := range card {
		n *= c
	}
	return n
}

// indexOf returns the position of name in vars, or -1.
func indexOf(vars []string, name string) int {
	for i, v := range vars {
		if v == name {
			return i
		}
	}
	return -1
}

// assignment decodes a flat index into per-variable state indices.
func (f *factor) assignment(flat int, out []int) {
	for i := len(f.card) - 1; i >= 0; i-- {
		out[i] = flat % f.card[i]
		flat /= f.card[i]
	}
}

// flatIndex encodes per-variable state indices into a flat index.
func flatIndex(card, assign []int) int {
	idx := 0
	for i := range card {
		idx = idx*card[i] + assign[i]
	}
	return idx
}

// product multiplies two factors into one over the union of their variables.
func product(a, b *factor) *factor {
	vars := append([]string{}, a.vars...)
	card := append([]int{}, a.card...)
	for i, v := range b.vars {
		if indexOf(vars, v) < 0 {
			vars = append(vars, v)
			card = append(card, b.card[i])
		}
	}

	// Map each input factor's variables to positions in the result.
	aPos := make([]int, len(a.vars))
	for i, v := range a.vars {
		aPos[i] = indexOf(vars, v)
	}
	bPos := make([]int, len(b.vars))
	for i, v := range b.vars {
		bPos[i] = indexOf(vars, v)
	}

	out := &factor{vars: vars, card: card, values: make([]float64, tableSize(card))}
	assign := make([]int, len(vars))
	aAssign := make([]int, len(a.vars))
	bAssign := make([]int, len(b.vars))

	for flat := range out.values {
		out.assignment(flat, assign)
		for i, p := range aPos {
			aAssign[i] = assign[p]
		}
		for i, p := range bPos {
			bAssign[i] = assign[p]
		}
		out.values[flat] = a.values[flatIndex(a.card, aAssign)] * b.values[flatIndex(b.card, bAssign)]
	}
	return out
}

// marginalize sums a variable out of a factor. Factors over zero variables
// collapse to a single scalar entry.
func marginalize(f *factor, name string) *factor {
	pos := indexOf(f.vars, name)
	if pos < 0 {
		return f
	}

	vars := make([]string, 0, len(f.vars)-1)
	card := make([]int, 0, len(f.card)-1)
	for i, v := range f.vars {
		if i == pos {
			continue
		}
		vars = append(vars, v)
		card = append(card, f.card[i])
	}

	out := &factor{vars: vars, card: card, values: make([]float64, tableSize(card))}
	assign := make([]int, len(f.vars))
	outAssign := make([]int, len(vars))

	for flat, v := range f.values {
		f.assignment(flat, assign)
		oi := 0
		for i := range f.vars {
			if i == pos {
				continue
			}
			outAssign[oi] = assign[i]
			oi++
		}
		out.values[flatIndex(card, outAssign)] += v
	}
	return out
}

// reduce fixes a variable to one state and drops it from the factor.
func reduce(f *factor, name string, state int) *factor {
	pos := indexOf(f.vars, name)
	if pos < 0 {
		return f
	}

	vars := make([]string, 0, len(f.vars)-1)
	card := make([]int, 0, len(f.card)-1)
	for i, v := range f.vars {
		if i == pos {
			continue
		}
		vars = append(vars, v)
		card = append(card, f.card[i])
	}

	out := &factor{vars: vars, card: card, values: make([]float64, tableSize(card))}
	assign := make([]int, len(f.vars))
	outAssign := make([]int, len(vars))

	for flat, v := range f.values {
		f.assignment(flat, assign)
		if assign[pos] != state {
			continue
		}
		oi := 0
		for i := range f.vars {
			if i == pos {
				continue
			}
			outAssign[oi] = assign[i]
			oi++
		}
		out.values[flatIndex(card, outAssign)] = v
	}
	return out
}
