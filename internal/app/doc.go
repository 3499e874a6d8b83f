// Package app wires the toolkit's application dependencies for the
// CLI: NewWire builds the shared Catalog, Auth Broker, token cache and
// logger from a Config, and App is the thin facade commands reach
// into to build the persona-specific Server, Client, or Bridge.
package app
