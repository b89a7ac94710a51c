// Package testmodel holds an observable type together with its committed
// generated accessors. Tests check that the generator still produces the
// committed file and run the generated setters.
package testmodel

import (
	"time"

	"github.com/syssam/autogen"
)

// Vehicle starts with a V, so generated methods cannot use the setter
// parameter name as receiver.
//
//autogen:observable
type Vehicle struct {
	autogen.ChangeTracker

	//autogen:property
	_speed int

	//autogen:property "id" "identifier of the vehicle."
	ident string

	//autogen:property
	_stops []time.Time
}
