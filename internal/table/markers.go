package table

// MaxTokens is the number of tokens a player may hold at once.
const MaxTokens = 3

// Markers is the ordered set of slots one player has marked, oldest first.
// The zero value is empty and ready to use.
type Markers struct {
	slots [MaxTokens]int
	n     int
}

// Len returns the number of marked slots.
func (m *Markers) Len() int { return m.n }

// Full reports whether no further slot can be marked.
func (m *Markers) Full() bool { return m.n == MaxTokens }

// Has reports whether slot is marked.
func (m *Markers) Has(slot int) bool {
	return m.index(slot) >= 0
}

func (m *Markers) index(slot int) int {
	for i := 0; i < m.n; i++ {
		if m.slots[i] == slot {
			return i
		}
	}
	return -1
}

// Add marks slot. It returns false when the slot is already marked or the
// set is full.
func (m *Markers) Add(slot int) bool {
	if m.Full() || m.Has(slot) {
		return false
	}
	m.slots[m.n] = slot
	m.n++
	return true
}

// Remove unmarks slot, keeping the order of the others. It returns false
// when slot was not marked.
func (m *Markers) Remove(slot int) bool {
	i := m.index(slot)
	if i < 0 {
		return false
	}
	copy(m.slots[i:m.n], m.slots[i+1:m.n])
	m.n--
	return true
}

// Toggle removes slot if marked and adds it otherwise. ok is false when the
// slot would have been added to a full set; nothing changes in that case.
func (m *Markers) Toggle(slot int) (placed, ok bool) {
	if m.Remove(slot) {
		return false, true
	}
	if !m.Add(slot) {
		return false, false
	}
	return true, true
}

// Slots returns the marked slots, oldest first.
func (m *Markers) Slots() []int {
	out := make([]int, m.n)
	copy(out, m.slots[:m.n])
	return out
}

// Clear unmarks everything.
func (m *Markers) Clear() { m.n = 0 }
