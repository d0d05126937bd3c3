// Package state holds the console's client-side cache of the PRMS API.
//
// # Overview
//
// Store groups one resource.Slice per entity (patients, appointments, users,
// doctors, invoices, medical history, audit logs, reports) together with the
// signed-in session and a connectivity record. It is created once per process
// and handed to the UI, the poller and the CLI; tests create their own.
//
// Every operation goes through a slice, so the usual lifecycle applies: the op
// becomes pending, the request runs, and the collection only changes after the
// server confirms. Failures keep the previous data and record a message.
//
// # Connectivity
//
// Health is the successor of a single poll snapshot: it records the time and
// error of the last request and how many transport failures happened in a
// row. Two or more means offline. An HTTP error response resets the count
// because the server answered.
//
// # Dashboards
//
// Dashboard(role) lists the collections a role sees. Refresh loads a set of
// collections concurrently, scoping history to the patient for patient users.
//
// # Usage Example
//
//	store := state.New(client, state.WithLogger(log))
//	if _, err := store.Login(ctx, prms.Credentials{Email: email, Password: pw}); err != nil {
//		return err
//	}
//	if err := store.Refresh(ctx, state.Dashboard(store.Session().Role())...); err != nil {
//		log.Warn().Err(err).Msg("refresh failed")
//	}
//	rows := view.Select(store.Appointments.Items(), criteria, view.Appointments(), time.Now())
package state
