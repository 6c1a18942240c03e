package mocks

import "sync"

type Broadcast struct {
	RoomID  string
	Event   string
	Payload any
}

type Broadcaster struct {
	mu     sync.Mutex
	events []Broadcast

	OnBroadcast func(b Broadcast)
}

func (f *Broadcaster) BroadcastToRoom(roomID, event string, payload any) {
	b := Broadcast{RoomID: roomID, Event: event, Payload: payload}
	if f.OnBroadcast != nil {
		f.OnBroadcast(b)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, b)
}

func (f *Broadcaster) Events() []Broadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Broadcast{}, f.events...)
}
