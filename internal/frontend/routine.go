package frontend

import "github.com/vk/fortloom/internal/ident"

// Variable is one declared entity. Fields is populated when the nominal type
// resolves to a known derived type; it stays nil for intrinsic types and for
// derived types with no supplied layout.
type Variable struct {
	Name     string
	TypeName string
	Shape    string
	Fields   []*Variable
}

// DerivedType is the layout of a user-defined type, either harvested from a
// parsed module or supplied externally.
type DerivedType struct {
	Name   string
	Fields []*Variable
}

// Signature is the callable interface of a routine, attached to call sites
// during interprocedural enrichment.
type Signature struct {
	Name       string
	Parameters []*Variable
}

// Routine is a parsed subroutine. Transformations may mutate it freely, the
// name included.
type Routine struct {
	Name      string
	Arguments []*Variable
	Variables []*Variable
	Body      []Node
	Members   []*Routine
}

// Signature returns the routine's callable interface.
func (r *Routine) Signature() *Signature {
	return &Signature{Name: r.Name, Parameters: r.Arguments}
}

// Rename changes the routine's name. Call sites in other routines are not
// touched; use RenameCalls on the callers.
func (r *Routine) Rename(name string) {
	r.Name = name
}

// RenameCalls retargets every call to old at newName, matching the old name
// case-insensitively.
func (r *Routine) RenameCalls(old, newName string) {
	key := ident.Canon(old)
	for _, call := range FindCalls(r.Body) {
		if ident.Canon(call.Name) == key {
			call.Name = newName
		}
	}
}

// EnrichCalls attaches the matching callee signature to every call site in
// the routine's body. Call sites whose callee is not in routines are left
// untouched; that is not an error. Name matching is case-insensitive.
func (r *Routine) EnrichCalls(routines []*Routine) {
	byName := make(map[string]*Routine, len(routines))
	for _, rt := range routines {
		if rt != nil {
			byName[ident.Canon(rt.Name)] = rt
		}
	}
	for _, call := range FindCalls(r.Body) {
		if callee, ok := byName[ident.Canon(call.Name)]; ok {
			call.Signature = callee.Signature()
		}
	}
}
