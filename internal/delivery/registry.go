// internal/delivery/registry.go
package delivery

import (
	"fmt"
	"strings"
	"sync"
)

// Handler delivers a completed agent reply for the conversation identified
// by key.
type Handler func(conversationKey, message string) error

// Registry routes completed replies to the appropriate delivery handler
// based on conversation key prefix (e.g. "console:", "telegram:").
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty delivery registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for conversation keys starting with prefix.
func (r *Registry) Register(prefix string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = handler
}

// Deliver finds the handler matching the conversation key prefix and calls it.
// Returns an error if no handler is registered for the prefix.
func (r *Registry) Deliver(conversationKey, message string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, handler := range r.handlers {
		if strings.HasPrefix(conversationKey, prefix) {
			return handler(conversationKey, message)
		}
	}
	return fmt.Errorf("no delivery handler for conversation key: %s", conversationKey)
}
