package kernel

// threadList is a FIFO of threads. Append at the tail, remove from the
// head; that is the only access pattern the scheduler needs.
type threadList struct {
	items []*Thread
}

func (l *threadList) append(t *Thread) {
	l.items = append(l.items, t)
}

func (l *threadList) removeFront() *Thread {
	if len(l.items) == 0 {
		return nil
	}
	t := l.items[0]
	l.items[0] = nil
	l.items = l.items[1:]
	return t
}

func (l *threadList) len() int {
	return len(l.items)
}

func (l *threadList) contains(t *Thread) bool {
	for _, e := range l.items {
		if e == t {
			return true
		}
	}
	return false
}
