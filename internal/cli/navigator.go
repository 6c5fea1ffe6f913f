package cli

import (
	"fmt"
	"io"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/screen"
)

// terminalNavigator prints each route change and keeps the history.
type terminalNavigator struct {
	out     io.Writer
	history *screen.History
}

func (n *terminalNavigator) Navigate(route screen.Route, user *model.User) {
	n.history.Navigate(route, user)
	if user != nil {
		fmt.Fprintf(n.out, "-> %s (%s)\n", route, user.Email)
		return
	}
	fmt.Fprintf(n.out, "-> %s\n", route)
}
