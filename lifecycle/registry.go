/*
Copyright 2025 PayGrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package lifecycle

import (
	"sync"

	"github.com/paygridhq/paygrid/model"
)

// Registry indexes live sessions by transaction reference so out-of-band
// status records (webhook callbacks) can be routed to the session that
// owns them. Sessions remove themselves once they reach a terminal
// state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register adds a session and removes it automatically when it finishes.
// At most one session per reference is tracked; registering a second one
// for the same reference replaces the first, matching the rule that a
// new transaction always starts a fresh session.
func (r *Registry) Register(s *Session) {
	key := s.Reference().String()

	r.mu.Lock()
	r.sessions[key] = s
	r.mu.Unlock()

	go func() {
		<-s.Done()
		r.mu.Lock()
		if r.sessions[key] == s {
			delete(r.sessions, key)
		}
		r.mu.Unlock()
	}()
}

// Lookup returns the live session for a reference, if any.
func (r *Registry) Lookup(ref model.TransactionReference) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[ref.String()]
	return s, ok
}

// Dispatch routes a status record to the session tracking ref. It
// reports whether a live session was found.
func (r *Registry) Dispatch(ref model.TransactionReference, rec *model.StatusRecord) bool {
	s, ok := r.Lookup(ref)
	if !ok {
		return false
	}
	s.Ingest(rec)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
