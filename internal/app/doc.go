// Package app is the composition root of the console.
//
// # Overview
//
// Setup reads configuration (config file, .env, environment), opens the log
// file and builds a prms.Client and a state.Store. Run additionally resumes
// the saved session, starts the background poller and hands everything to
// the terminal UI. The CLI uses Setup and ResumeSession directly.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        settings + env overrides
//	       ├─────> logging.New()        zerolog to <log_dir>/prms.log
//	       ├─────> prms.NewClient()     HTTP client
//	       ├─────> state.New()          per-entity slices
//	       ├─────> ResumeSession()      PRMS_TOKEN or session.toml
//	       ├─────> StartPoller()        background refresh
//	       └─────> ui.Run()             dashboards (blocks)
//
// # Polling
//
// The poller refreshes the collections of the signed-in role's dashboard
// every interval (15s by default). Each consecutive transport failure
// doubles the delay up to two minutes; the first success restores the base
// interval. Signed out, the poller does nothing.
package app
