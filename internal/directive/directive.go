// Package directive reads the action codes an assistant reply may carry,
// e.g. "Done! [ACTION:PIN:184392]".
package directive

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindNone    Kind = ""
	KindPin     Kind = "PIN"
	KindUnknown Kind = "UNKNOWN"
)

var pattern = regexp.MustCompile(`\[ACTION:([A-Z]+):([^\]]+)\]`)

// Directive is the result of scanning one reply. Kind is KindNone when the
// reply carries no action; KindUnknown keeps the raw code in Code.
type Directive struct {
	Kind   Kind   `json:"kind"`
	Code   string `json:"code,omitempty"`
	Target string `json:"target,omitempty"`
}

func (d Directive) Found() bool {
	return d.Kind != KindNone
}

// Parse returns the first directive in reply. Later ones are ignored.
func Parse(reply string) Directive {
	m := pattern.FindStringSubmatch(reply)
	if m == nil {
		return Directive{}
	}
	d := Directive{Code: m[1], Target: m[2]}
	switch Kind(m[1]) {
	case KindPin:
		d.Kind = KindPin
	default:
		d.Kind = KindUnknown
	}
	return d
}

// Strip removes the first directive and trims the result. A reply without
// a directive is returned unchanged.
func Strip(reply string) string {
	loc := pattern.FindStringIndex(reply)
	if loc == nil {
		return reply
	}
	return strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
}

// Pinner is the mutation a PIN directive triggers.
type Pinner interface {
	SetPinned(id string, pinned bool) bool
}

// Apply runs the mutation for d at most once and reports whether one ran.
func Apply(d Directive, p Pinner) bool {
	if d.Kind != KindPin || p == nil {
		return false
	}
	p.SetPinned(d.Target, true)
	return true
}

// Handle parses reply, applies its directive and returns the cleaned text.
func Handle(reply string, p Pinner) (string, Directive) {
	d := Parse(reply)
	if !d.Found() {
		return reply, d
	}
	Apply(d, p)
	return Strip(reply), d
}
