// Package cli is the prms command line. Every command builds its own
// app.Env, resumes the saved session and goes through state.Store, so list
// filters and mutations behave exactly as they do in the TUI.
package cli
