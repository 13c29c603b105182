// Package export writes snapshots of a user's lists to object storage.
//
// Each export is one JSON document holding every core, created and following list
// of the user, stored as exports/<creatorKey>/lists-<timestamp>.json in the
// configured bucket. Only the newest storage.export_retention exports are kept.
//
// # HTTP Endpoints
//
//   - POST /export/:username        : Create an export.
//   - GET  /export/:username        : List stored exports, newest first.
//   - GET  /export/:username/latest : Download the newest export.
package export
