package types

// Apply binds each pending constraint into the environment and keeps every
// stored type consistent with the new bindings, repeating until no new
// constraints arise.
//
// A variable seen for the first time is bound in the innermost frame. A
// variable that is already bound is unified again with the new type, even
// when that type still has unknowns, instead of substituting into the old
// type; the constraints that produces are applied in the next round. After each new
// binding every stored type mentioning the variable is rewritten, so no stored
// type ever mentions a bound fresh variable.
func (e *Env) Apply(uf *Unifier, cs *Constraints) error {
	pending := cs
	for pending != nil && pending.Len() > 0 {
		next := NewConstraints()
		for _, v := range pending.Keys() {
			t, _ := pending.Get(v)
			t = e.Resolve(t)
			if v.Equal(t) {
				continue
			}
			if t.Contains(v) {
				return &UnifyError{Kind: ErrOccursCheck, Left: v, Right: t}
			}
			if old, ok := e.bound(v); ok {
				more, err := uf.Unify(e.Resolve(old), t)
				if err != nil {
					return err
				}
				next.Union(more)
				continue
			}
			e.AssignVar(v, t)
			e.rewrite(v, t)
		}
		pending = next
	}
	return nil
}

// rewrite substitutes v := t into every other stored type that mentions v.
func (e *Env) rewrite(v Unknown, t Type) {
	for _, f := range e.frames {
		for _, id := range f.order {
			b := f.vars[id]
			if !b.ID.Equal(v) && b.Type.Contains(v) {
				b.Type = b.Type.Substitute(v, t)
			}
		}
	}
	e.resolved.rewrite(v, t)
}
