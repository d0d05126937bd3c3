// Package ui provides the terminal interface of the PRMS console.
//
// The interface is a Bubble Tea program. Model holds no entity data of its
// own: every list is a derived view over a state.Store slice, recomputed on
// each render from the list's criteria (search text, status, date).
//
// # Screens
//
//   - Login: email and password, exchanged for a token and saved to the
//     session file
//   - Dashboard: one tab per collection the signed-in role can see
//     (state.Dashboard), each a filtered list with a detail screen
//   - Reports: the activity summary table for admins and staff
//   - Activity: the tail of the console's own log file
//
// # Event Flow
//
//  1. Store calls run inside tea.Cmds and come back as opDoneMsg
//  2. Lists read loading and error text from the slice's request state
//  3. A 401 from any call signs out and returns to the login screen
//  4. A one second tick re-renders so the header and toasts stay current
//
// Key bindings are listed in keys.go and in the help overlay (h or ?).
package ui
