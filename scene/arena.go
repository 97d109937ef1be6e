package scene

import "github.com/milk9111/tankbattle/body"

type slot struct {
	gen  generation
	body *body.Body
}

// arena stores bodies by slot with generations and a free list.
type arena struct {
	slots []slot
	free  []slotID
}

func (a *arena) insert(b *body.Body) Handle {
	var id slotID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		id = slotID(len(a.slots))
	}
	s := &a.slots[id-1]
	s.body = b
	return makeHandle(id, s.gen)
}

func (a *arena) release(h Handle) bool {
	if !a.alive(h) {
		return false
	}
	s := &a.slots[h.id()-1]
	s.gen++
	s.body = nil
	a.free = append(a.free, h.id())
	return true
}

func (a *arena) alive(h Handle) bool {
	id := h.id()
	if id == 0 || int(id) > len(a.slots) {
		return false
	}
	s := a.slots[id-1]
	return s.body != nil && s.gen == h.generation()
}

func (a *arena) get(h Handle) (*body.Body, bool) {
	if !a.alive(h) {
		return nil, false
	}
	return a.slots[h.id()-1].body, true
}
