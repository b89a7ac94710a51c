package autogen

import (
	"runtime"
	"strings"
	"sync"
)

// ChangeTracker records which properties of an entity changed.
//
// Types marked with //autogen:observable embed it, and the generated
// setters call PropertyChanged after assigning a new value:
//
//	//autogen:observable
//	type Order struct {
//		autogen.ChangeTracker
//
//		//autogen:property
//		_status Status
//	}
//
// The zero value is ready to use. A ChangeTracker must not be copied after
// first use.
type ChangeTracker struct {
	mu      sync.Mutex
	order   []string
	changed map[string]struct{}
}

// PropertyChanged records a change of the property whose setter is the
// caller. The property name is taken from the calling method name, so a
// setter named setStatus or SetStatus records "Status" and setid records
// "id".
func (t *ChangeTracker) PropertyChanged() {
	if name := callerProperty(); name != "" {
		t.MarkChanged(name)
	}
}

// MarkChanged records a change of the named property.
func (t *ChangeTracker) MarkChanged(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.changed == nil {
		t.changed = make(map[string]struct{})
	}
	if _, ok := t.changed[name]; ok {
		return
	}
	t.changed[name] = struct{}{}
	t.order = append(t.order, name)
}

// ChangedProperties returns the changed property names in the order they
// first changed.
func (t *ChangeTracker) ChangedProperties() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasChanges reports whether any property changed since the last reset.
func (t *ChangeTracker) HasChanges() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order) > 0
}

// ResetChanges forgets all recorded changes.
func (t *ChangeTracker) ResetChanges() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = nil
	t.changed = nil
}

// callerProperty walks the stack past the tracker frames and returns the
// property name derived from the first foreign function.
func callerProperty() string {
	var pcs [8]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasSuffix(frame.Function, ".PropertyChanged") && !strings.HasSuffix(frame.Function, ".callerProperty") {
			return PropertyFromFunc(frame.Function)
		}
		if !more {
			return ""
		}
	}
}

// PropertyFromFunc derives a property name from a fully qualified setter
// function name as reported by the runtime, e.g.
// "example.com/shop.(*Order).setStatus" gives "Status". The remainder keeps
// its case, so the setter setid of property id gives "id".
func PropertyFromFunc(fn string) string {
	if i := strings.LastIndexByte(fn, '.'); i >= 0 {
		fn = fn[i+1:]
	}
	for _, prefix := range []string{"set", "Set"} {
		if rest, ok := strings.CutPrefix(fn, prefix); ok && rest != "" {
			return rest
		}
	}
	return fn
}
