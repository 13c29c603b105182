// Package users implements the user directory used to resolve creator keys.
//
// Lists are owned by an opaque creator key. Requests identify users either by that
// key or by a public username; the Directory resolves both. An unknown user is
// reported as absent rather than as an error, so callers answer with an empty
// result.
//
// # Components
//
//   - Resolver: the lookup contract consumed by the lists and export features.
//   - Directory: the GORM implementation over the users table.
package users
