// Package view computes derived, read-only views over stored collections.
//
// Select keeps the items that satisfy every active criterion (free text,
// date, status) and sorts them. Text matching is a case-insensitive
// substring test over the fields a Spec exposes. Status matching goes through
// a SynonymMap so a display label ("Scheduled") and a stored code ("pending")
// compare equal; values missing from the map never match. "Today" is
// resolved once per evaluation from the supplied clock.
//
// Selector wraps a source function and criteria and recomputes on every
// read; nothing is cached.
package view
