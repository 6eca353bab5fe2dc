package types_test

import (
	"testing"

	"github.com/nalgeon/be"

	. "github.com/smasher164/autotype/types"
)

func TestString(t *testing.T) {
	var uf Unifier
	u := uf.Fresh()
	cases := []struct {
		typ  Type
		want string
	}{
		{Int, "int"},
		{Bool, "bool"},
		{Array{Elem: Array{Elem: Int}}, "tab[tab[int]]"},
		{Function{Return: Int}, "( )->int"},
		{Function{Return: Bool, Params: []Type{Int, Array{Elem: Bool}}}, "( int tab[bool] )->bool"},
		{u, "UnknownType(, 0)"},
		{Named("x"), "UnknownType(x, 0)"},
	}
	for _, c := range cases {
		be.Equal(t, c.typ.String(), c.want)
	}
}

func TestEqual(t *testing.T) {
	var uf Unifier
	u, w := uf.Fresh(), uf.Fresh()
	be.True(t, Int.Equal(Int))
	be.True(t, !Int.Equal(Bool))
	be.True(t, Array{Elem: u}.Equal(Array{Elem: u}))
	be.True(t, !Array{Elem: u}.Equal(Array{Elem: w}))
	be.True(t, !Function{Return: Int, Params: []Type{Int}}.Equal(Function{Return: Int, Params: []Type{Int, Int}}))
	be.True(t, !Function{Return: Int, Params: []Type{Int, Bool}}.Equal(Function{Return: Int, Params: []Type{Bool, Int}}))

	// named variables compare by name alone
	be.True(t, Named("x").Equal(Unknown{Name: "x", Index: 7}))
	be.True(t, !Named("x").Equal(Named("y")))
	be.True(t, !Named("x").Equal(u))
}

func TestContainsSubstitute(t *testing.T) {
	var uf Unifier
	u, w := uf.Fresh(), uf.Fresh()
	f := Function{Return: Array{Elem: u}, Params: []Type{Int, w}}

	be.True(t, f.Contains(u))
	be.True(t, f.Contains(w))
	be.True(t, !Int.Contains(u))
	be.True(t, u.Contains(u))

	got := f.Substitute(u, Bool)
	be.Equal(t, got.String(), "( int UnknownType(, 1) )->tab[bool]")
	// the receiver is left alone
	be.True(t, f.Contains(u))

	be.Equal(t, u.Substitute(w, Int), Type(u))
	be.Equal(t, Int.Substitute(u, Bool), Type(Int))
}

func TestUnknowns(t *testing.T) {
	var uf Unifier
	u, w := uf.Fresh(), uf.Fresh()
	f := Function{Return: w, Params: []Type{u, Array{Elem: w}, u}}
	be.Equal(t, Unknowns(f), []Unknown{w, u})
	be.True(t, !IsConcrete(f))
	be.True(t, IsConcrete(Function{Return: Int, Params: []Type{Array{Elem: Bool}}}))
	be.True(t, IsFunction(f))
	be.True(t, !IsFunction(u))
}

func TestFreshIsPerUnifier(t *testing.T) {
	var a, b Unifier
	be.Equal(t, a.Fresh(), b.Fresh())
	be.True(t, !a.Fresh().Equal(a.Fresh()))
}
