package frontend

// SourceFile is the parsed representation of one file: any number of
// modules plus free-standing subroutines.
type SourceFile struct {
	Path        string
	Modules     []*Module
	Subroutines []*Routine
}

// Module is a parsed Fortran module: its contained routines and any derived
// types it defines.
type Module struct {
	Name     string
	Routines []*Routine
	TypeDefs map[string]*DerivedType
}

// AllSubroutines returns every routine in the file in source order,
// free-standing ones first, then module-contained ones.
func (f *SourceFile) AllSubroutines() []*Routine {
	out := make([]*Routine, 0, len(f.Subroutines))
	out = append(out, f.Subroutines...)
	for _, m := range f.Modules {
		out = append(out, m.Routines...)
	}
	return out
}

// TypeDefs merges the derived-type definitions of all modules in the file,
// keyed by canonical type name.
func (f *SourceFile) TypeDefs() map[string]*DerivedType {
	out := make(map[string]*DerivedType)
	for _, m := range f.Modules {
		for name, td := range m.TypeDefs {
			out[name] = td
		}
	}
	return out
}
