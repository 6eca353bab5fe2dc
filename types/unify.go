package types

// Unifier computes substitutions between types. It owns the counter that
// numbers fresh type variables, so two passes never share identities.
type Unifier struct {
	next int
}

// Fresh returns a type variable never returned before by u.
func (u *Unifier) Fresh() Unknown {
	v := Unknown{Index: u.next}
	u.next++
	return v
}

// Unify returns the constraints that make a and b equal. On failure the error
// is a *UnifyError.
func (u *Unifier) Unify(a, b Type) (*Constraints, error) {
	if a.Equal(b) {
		return NewConstraints(), nil
	}
	if v, ok := a.(Unknown); ok {
		return u.bind(v, b)
	}
	if v, ok := b.(Unknown); ok {
		return u.bind(v, a)
	}
	switch a := a.(type) {
	case Array:
		if b, ok := b.(Array); ok {
			return u.Unify(a.Elem, b.Elem)
		}
	case Function:
		if b, ok := b.(Function); ok {
			return u.unifyFunctions(a, b)
		}
	}
	return nil, &UnifyError{Kind: ErrTypeMismatch, Left: a, Right: b}
}

func (u *Unifier) bind(v Unknown, t Type) (*Constraints, error) {
	if t.Contains(v) {
		return nil, &UnifyError{Kind: ErrOccursCheck, Left: v, Right: t}
	}
	cs := NewConstraints()
	f, ok := t.(Function)
	if !ok {
		cs.Add(v, t)
		return cs, nil
	}
	// v is given a signature of its own fresh variables, each constrained to
	// the matching part of f.
	inst := Function{Return: u.Fresh(), Params: make([]Type, len(f.Params))}
	for i := range f.Params {
		inst.Params[i] = u.Fresh()
	}
	cs.Add(v, inst)
	cs.Add(inst.Return.(Unknown), f.Return)
	for i, p := range inst.Params {
		cs.Add(p.(Unknown), f.Params[i])
	}
	return cs, nil
}

func (u *Unifier) unifyFunctions(a, b Function) (*Constraints, error) {
	if len(a.Params) != len(b.Params) {
		return nil, &UnifyError{Kind: ErrArityMismatch, Left: a, Right: b}
	}
	cs, err := u.Unify(a.Return, b.Return)
	if err != nil {
		return nil, err
	}
	for i := range a.Params {
		// earlier results are applied first so a variable is never bound twice
		sub, err := u.Unify(cs.Apply(a.Params[i]), cs.Apply(b.Params[i]))
		if err != nil {
			return nil, err
		}
		cs.Union(sub)
	}
	return cs, nil
}
