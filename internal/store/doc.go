// Package store talks to the document store holding timetables.
//
// It has two halves: the Store interface (a path-addressed document API with
// SQLite and in-memory implementations) and the Adapter, which knows the
// three timetable layouts that accumulated in production and exposes one
// FetchDay/FetchWeek contract over all of them.
package store
