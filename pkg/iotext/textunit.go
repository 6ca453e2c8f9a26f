// Package iotext holds the shared node representation for the two
// line-oriented text formats the driver tool accepts as input: DDL
// (pkg/iotext/ddl) and LSD (pkg/iotext/lsd). Both formats describe units
// purely by name - neither carries an internal-register-pressure figure -
// so a single concrete [dag.Unit] implementation serves both.
package iotext

import "github.com/schedcore/rpsched/pkg/dag"

// Unit is a [dag.Unit] built from a textual name, with zero internal
// register pressure: DDL and LSD describe dependency shape only, never
// the values an instruction holds internally.
type Unit struct {
	Name string
}

// NewUnit returns a Unit with the given name.
func NewUnit(name string) *Unit { return &Unit{Name: name} }

// String implements [dag.Unit]. LSD names may themselves contain
// newlines (a continuation across multiple "Name ... \" lines), which is
// exactly what the DOT writer's record-shape rule for multi-line labels
// exists to render.
func (u *Unit) String() string { return u.Name }

// Dup implements [dag.Unit].
func (u *Unit) Dup() dag.Unit { return &Unit{Name: u.Name} }

// InternalRegisterPressure implements [dag.Unit]. Always zero: the text
// formats never describe values held internally to an instruction.
func (u *Unit) InternalRegisterPressure() uint { return 0 }
