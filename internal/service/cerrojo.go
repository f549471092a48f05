package service

import (
	"sync"

	"github.com/google/uuid"
)

// cerrojos serializes load-modify-save cycles per session. Entries are
// dropped when the last holder releases them.
type cerrojos struct {
	mu sync.Mutex
	m  map[uuid.UUID]*cerrojo
}

type cerrojo struct {
	sync.Mutex
	refs int
}

func nuevosCerrojos() *cerrojos {
	return &cerrojos{m: make(map[uuid.UUID]*cerrojo)}
}

func (c *cerrojos) tomar(id uuid.UUID) (liberar func()) {
	c.mu.Lock()
	l, ok := c.m[id]
	if !ok {
		l = &cerrojo{}
		c.m[id] = l
	}
	l.refs++
	c.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.m, id)
		}
		c.mu.Unlock()
	}
}
