// Package prms provides an HTTP client for the PRMS REST API.
//
// # Overview
//
// The client performs one request per method and returns typed entities
// (Patient, Appointment, User, Invoice, MedicalHistory, AuditLog,
// ReportSummary). It knows nothing about caching or request state; that is
// the job of the resource and state packages.
//
// # Architecture
//
//   - client.go: transport, headers, timeout, request logging
//   - envelope.go: the single normalization boundary for response envelopes
//   - resources.go: per-entity endpoints
//   - auth.go, token.go: login, profile, bearer token claims
//   - types.go: entities, status codes and their display labels
//   - validate.go: input payloads and client-side validation
//   - errors.go: error taxonomy and user-facing messages
//
// # Client Usage
//
//	client, err := prms.NewClient("https://prms.example.com/api", prms.WithToken(token))
//	if err != nil {
//		return err
//	}
//	patients, err := client.ListPatients(ctx)
//	if err != nil {
//		fmt.Println(prms.UserMessage(err))
//	}
//
// Every request carries Accept, User-Agent, a fresh X-Request-ID and, when a
// token is set, "Authorization: Bearer <token>". Requests time out after
// DefaultTimeout (10s) unless WithTimeout says otherwise.
//
// # Envelopes
//
// Success bodies are unwrapped in this order:
//
//  1. data.<key>, where key is the entity's singular or plural name
//  2. data itself
//  3. the bare body
//
// Objects carrying "_id" but no "id" get the id copied over. A body that fits
// none of the shapes, or a single entity without an id, is a *ShapeError.
//
// # Errors
//
// Errors are typed so callers can branch with errors.As:
//
//   - *TransportError: no usable response (refused, DNS, timeout)
//   - *APIError: non-2xx; Error() returns the server message verbatim
//   - *ShapeError: 2xx with an unexpected payload
//   - *ValidationError: rejected before sending
//
// UserMessage turns any of these into the text shown in the console.
package prms
