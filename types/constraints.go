package types

import (
	"strings"
)

// substMap is an insertion-ordered map from type variables to types.
type substMap struct {
	keys []Unknown
	m    map[Unknown]Type
}

func (s *substMap) Len() int { return len(s.keys) }

func (s *substMap) Get(u Unknown) (Type, bool) {
	t, ok := s.m[u.key()]
	return t, ok
}

// set overwrites an existing entry in place, keeping its original position.
func (s *substMap) set(u Unknown, t Type) {
	u = u.key()
	if s.m == nil {
		s.m = make(map[Unknown]Type)
	}
	if _, ok := s.m[u]; !ok {
		s.keys = append(s.keys, u)
	}
	s.m[u] = t
}

// Keys returns the variables in insertion order.
func (s *substMap) Keys() []Unknown {
	return append([]Unknown(nil), s.keys...)
}

func (s *substMap) Each(f func(Unknown, Type)) {
	for _, k := range s.keys {
		f(k, s.m[k])
	}
}

// rewrite substitutes u := t into every value that mentions u.
func (s *substMap) rewrite(u Unknown, t Type) {
	for _, k := range s.keys {
		if v := s.m[k]; v.Contains(u) {
			s.m[k] = v.Substitute(u, t)
		}
	}
}

func (s *substMap) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k.String())
		sb.WriteString(" -> ")
		sb.WriteString(s.m[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Constraints is a pending substitution produced by unification and consumed
// by Env.Apply. Entries are kept idempotent: no value mentions a key.
type Constraints struct {
	substMap
}

func NewConstraints() *Constraints {
	return &Constraints{}
}

// Add records u := t, composing it with the entries already present. A
// later entry for the same variable overwrites the earlier one.
func (c *Constraints) Add(u Unknown, t Type) {
	t = c.Apply(t)
	if u.Equal(t) {
		return
	}
	c.rewrite(u, t)
	c.set(u, t)
}

// Union adds every entry of other, left to right.
func (c *Constraints) Union(other *Constraints) {
	if other == nil {
		return
	}
	other.Each(c.Add)
}

// Apply substitutes every entry into t.
func (c *Constraints) Apply(t Type) Type {
	c.Each(func(u Unknown, s Type) {
		if t.Contains(u) {
			t = t.Substitute(u, s)
		}
	})
	return t
}

// Table is the persistent record of every type variable bound during a pass,
// filled as scope frames are left.
type Table struct {
	substMap
}

func (t *Table) Set(u Unknown, ty Type) {
	t.set(u, ty)
}
