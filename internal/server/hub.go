package server

import (
	"github.com/google/uuid"
)

func newHub() (h *hub) {
	h = &hub{
		sessions: make(map[uuid.UUID]*session),
	}
	return
}

func (h *hub) add(sess *session) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.sessions[sess.id] = sess
}

func (h *hub) remove(id uuid.UUID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.sessions, id)
}

func (h *hub) count() (active int) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	active = len(h.sessions)
	return
}

// Frames waiting in each session's outbox
func (h *hub) backlogs() (depths []uint64) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	depths = make([]uint64, 0, len(h.sessions))
	for _, sess := range h.sessions {
		depths = append(depths, uint64(len(sess.outbox)))
	}
	return
}

// Offers the frame to every session without blocking.
// Returns how many sessions took it and how many were full.
func (h *hub) publish(frame []byte) (delivered, refused int) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, sess := range h.sessions {
		if sess.offer(frame) {
			delivered++
		} else {
			refused++
		}
	}
	return
}

// Cancels every session, each one writes the end marker on its way out
func (h *hub) disconnectAll() {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, sess := range h.sessions {
		sess.cancel()
	}
}
