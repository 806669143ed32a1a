package inbox

import "sort"

// PinSet is the set of pinned message ids. It is independent of any fetched
// list and may hold ids that match no current message.
type PinSet struct {
	ids map[string]struct{}
}

func NewPinSet(ids ...string) PinSet {
	p := PinSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		p.ids[id] = struct{}{}
	}
	return p
}

func (p PinSet) Has(id string) bool {
	_, ok := p.ids[id]
	return ok
}

func (p PinSet) Len() int {
	return len(p.ids)
}

// IDs returns the members in lexical order.
func (p PinSet) IDs() []string {
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (p PinSet) Clone() PinSet {
	return NewPinSet(p.IDs()...)
}

func (p *PinSet) set(id string, pinned bool) {
	if p.ids == nil {
		p.ids = make(map[string]struct{})
	}
	if pinned {
		p.ids[id] = struct{}{}
	} else {
		delete(p.ids, id)
	}
}
