package ai

// Machine runs one tank's FSM. Its inputs are elapsed time and the
// collision edge trigger of the body it drives.
type Machine struct {
	table   *Table
	current StateID
	elapsed float64
}

func NewMachine(table *Table) *Machine {
	if table == nil {
		table = DefaultTable()
	}
	return &Machine{table: table, current: table.Initial}
}

// State returns the current state.
func (m *Machine) State() StateID {
	if m == nil {
		return ""
	}
	return m.current
}

// Elapsed returns the seconds spent in the current state.
func (m *Machine) Elapsed() float64 {
	if m == nil {
		return 0
	}
	return m.elapsed
}

// Handle applies ev. It reports whether a transition happened.
func (m *Machine) Handle(ev EventID) bool {
	if m == nil {
		return false
	}
	to, ok := m.table.Next(m.current, ev)
	if !ok {
		return false
	}
	m.current = to
	m.elapsed = 0
	return true
}

// Update advances the machine by dt. A collision takes precedence over an
// expired timer in the same tick.
func (m *Machine) Update(dt float64, collided bool) Command {
	if m == nil || m.table == nil {
		return Command{}
	}
	m.elapsed += dt
	if collided {
		m.Handle(EventCollided)
	} else if def := m.table.States[m.current]; def.Duration > 0 && m.elapsed >= def.Duration {
		m.Handle(EventTimerExpired)
	}

	def := m.table.States[m.current]
	return Command{
		State:       m.current,
		Drive:       def.Drive,
		Turn:        def.Turn,
		AimAtTarget: def.AimAtTarget,
		Fire:        def.Fire,
	}
}
