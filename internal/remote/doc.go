// Package remote is the HTTP client for the build and save backend.
//
// Endpoints, relative to the configured base URL:
//
//	PUT {base}/firmware/{keyboard}   compiled keymap in, firmware image out
//	PUT {base}/savedata              store a layout for a user
//	GET {base}/savedata?email={user} fetch a user's saved layout
//
// Requests are not retried. Non-2xx responses surface as *StatusError.
package remote
