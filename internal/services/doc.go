// Package services defines the [Backend] interface for the hosted data service the player talks to, and implements it
// for the remote deployments.
//
// # Backend Interface
//
// The player consumes exactly three remote operations:
//   - [Backend.ReadField] : read one column of one row
//   - [Backend.InvokeProcedure] : call a named server-side procedure (e.g. "increment")
//   - [Backend.UpdateField] : write one column of one row
//
// No transaction spans these calls. Two sessions incrementing the same counter can race and the last write wins.
//
// # Implementations
//
// [RESTBackend] speaks the PostgREST dialect used by hosted Postgres platforms (row filters in the query string,
// procedures under /rest/v1/rpc). Requests carry the anon key in the apikey and Authorization headers.
//
// [PostgresBackend] talks to Postgres directly through a pgx connection pool and calls SQL functions.
//
// The SQLite implementation lives in the repositories package next to the schema it reads.
//
// # Error Handling
//
// Backends return sentinels from the shared package:
//   - [shared.ErrTrackNotFound] : no row matched the id
//   - [shared.ErrInvalidField] : table, field or procedure name is not a plain identifier
//   - [shared.ErrAPIRequest] : the HTTP backend answered with a non-2xx status
package services
