// Package catalog provides the content catalog capability.
//
// A Catalog lists existing item names and creates items either from local
// bytes (stage-then-upload) or from a URL the catalog fetches itself
// (direct reference). Library implements it on a vSphere content library
// through govmomi's vapi/library manager.
//
// Every create runs in its own update session. If the transfer, completion
// or wait fails, the session is cancelled and the item deleted.
package catalog
