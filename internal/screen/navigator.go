// Package screen holds the view-models behind the Login, Registration and
// User View screens. A shell renders their exported fields and forwards user
// actions to their methods.
package screen

import (
	"context"
	"sync"

	"github.com/jwalitptl/medops-mobile/internal/model"
)

// Route names a screen
type Route string

const (
	RouteLogin        Route = "Login"
	RouteRegistration Route = "Registration"
	RouteUserView     Route = "User View"
)

// Navigator moves the shell to another screen. User is only set for User View.
type Navigator interface {
	Navigate(route Route, user *model.User)
}

// SessionStore is the subset of session.Store the screens use
type SessionStore interface {
	Save(ctx context.Context, user *model.User) error
	Load(ctx context.Context) (*model.User, bool)
	Clear(ctx context.Context) error
}

// Visit is one recorded navigation
type Visit struct {
	Route Route
	User  *model.User
}

// History is a Navigator that records every navigation.
type History struct {
	mu     sync.Mutex
	visits []Visit
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Navigate(route Route, user *model.User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visits = append(h.visits, Visit{Route: route, User: user})
}

// Current returns the last visit, or ok=false before any navigation.
func (h *History) Current() (Visit, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.visits) == 0 {
		return Visit{}, false
	}
	return h.visits[len(h.visits)-1], true
}

func (h *History) Visits() []Visit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Visit(nil), h.visits...)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route Route, user *model.User)

func (f NavigatorFunc) Navigate(route Route, user *model.User) {
	f(route, user)
}
