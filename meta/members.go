package meta

// members is a name-keyed table that keeps declaration order.
type members[T any] struct {
	items []T
	names []string
	index map[string]int
}

func (m *members[T]) add(name string, item T) bool {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, ok := m.index[name]; ok {
		return false
	}
	m.index[name] = len(m.items)
	m.items = append(m.items, item)
	m.names = append(m.names, name)
	return true
}

func (m *members[T]) get(name string) (T, bool) {
	i, ok := m.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return m.items[i], true
}

func (m *members[T]) at(i int) (T, bool) {
	if i < 0 || i >= len(m.items) {
		var zero T
		return zero, false
	}
	return m.items[i], true
}

func (m *members[T]) has(name string) bool {
	_, ok := m.index[name]
	return ok
}

func (m *members[T]) len() int {
	return len(m.items)
}
