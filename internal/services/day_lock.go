package services

import (
	"fmt"
	"sync"
)

// DayLocker serialises work on one (user, date) inside this process. It backs
// up the row lock for stores such as SQLite that ignore SELECT ... FOR UPDATE.
type DayLocker struct {
	mu    sync.Mutex
	locks map[string]*dayLock
}

type dayLock struct {
	mu   sync.Mutex
	refs int
}

func NewDayLocker() *DayLocker {
	return &DayLocker{locks: make(map[string]*dayLock)}
}

// Lock blocks until the key is free and returns its unlock func.
func (l *DayLocker) Lock(userID uint, workDate string) func() {
	key := fmt.Sprintf("%d|%s", userID, workDate)

	l.mu.Lock()
	dl, ok := l.locks[key]
	if !ok {
		dl = &dayLock{}
		l.locks[key] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.mu.Lock()
	return func() {
		dl.mu.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// size is the number of keys currently held or awaited.
func (l *DayLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
