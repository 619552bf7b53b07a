package table

import "fmt"

// Submit snapshots player's three tokens into a Request and enqueues it for
// the dealer. It fails with ErrIncomplete unless the player holds exactly
// MaxTokens tokens, and with ErrAlreadyPending while an earlier request of
// the same player is unresolved.
func (t *Table) Submit(player int) (Request, error) {
	if err := t.checkPlayer(player); err != nil {
		return Request{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	m := &t.markers[player]
	if m.Len() != MaxTokens {
		return Request{}, fmt.Errorf("%w: %d of %d", ErrIncomplete, m.Len(), MaxTokens)
	}
	req := Request{Player: player}
	for i, slot := range m.Slots() {
		req.Picks[i] = Pick{Slot: slot, Card: t.slots[slot]}
	}
	if err := t.enqueueLocked(req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// EnqueueVerification appends req to the verification queue. A player may
// have at most one request queued or in service.
func (t *Table) EnqueueVerification(req Request) error {
	if err := t.checkPlayer(req.Player); err != nil {
		return err
	}
	for _, p := range req.Picks {
		if err := t.checkSlot(p.Slot); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.enqueueLocked(req)
}

func (t *Table) enqueueLocked(req Request) error {
	if t.pending[req.Player] {
		return fmt.Errorf("%w: player %d", ErrAlreadyPending, req.Player)
	}
	t.pending[req.Player] = true
	t.queue = append(t.queue, req)
	t.signalLocked()
	return nil
}

// signalLocked wakes the dealer. The channel holds at most one token, so a
// burst of requests collapses into a single wake-up; DequeueVerification
// re-arms it while requests remain.
func (t *Table) signalLocked() {
	select {
	case t.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives whenever the verification queue
// may be non-empty.
func (t *Table) Ready() <-chan struct{} {
	return t.ready
}

// DequeueVerification pops the oldest request. The requesting player may
// submit again once the request has been popped, although in practice it
// waits for the dealer's verdict first.
func (t *Table) DequeueVerification() (Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queue) == 0 {
		return Request{}, false
	}
	req := t.queue[0]
	t.queue[0] = Request{}
	t.queue = t.queue[1:]
	t.pending[req.Player] = false
	if len(t.queue) > 0 {
		t.signalLocked()
	}
	return req, true
}

// DrainVerifications empties the queue and returns the requests in arrival
// order.
func (t *Table) DrainVerifications() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	drained := t.queue
	t.queue = nil
	for _, req := range drained {
		t.pending[req.Player] = false
	}
	select {
	case <-t.ready:
	default:
	}
	return drained
}

// PendingVerifications returns the number of queued requests.
func (t *Table) PendingVerifications() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// IsPending reports whether player has a queued request.
func (t *Table) IsPending(player int) bool {
	if t.checkPlayer(player) != nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[player]
}

// StillHolds reports whether every pick of req still matches the live
// table: the slot holds the same card and the player's token is still on
// it.
func (t *Table) StillHolds(req Request) bool {
	if t.checkPlayer(req.Player) != nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	m := &t.markers[req.Player]
	for _, p := range req.Picks {
		if p.Slot < 0 || p.Slot >= len(t.slots) {
			return false
		}
		if t.slots[p.Slot] != p.Card || !m.Has(p.Slot) {
			return false
		}
	}
	return true
}
