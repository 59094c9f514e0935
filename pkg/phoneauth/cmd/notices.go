package main

import "sync"

// noticeBoard remembers the notice waiting for an answer.
type noticeBoard struct {
	mu sync.Mutex
	id string
}

func (b *noticeBoard) set(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.id = id
}

func (b *noticeBoard) clear(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.id == id {
		b.id = ""
	}
}

func (b *noticeBoard) take() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.id
	b.id = ""
	return id, id != ""
}
