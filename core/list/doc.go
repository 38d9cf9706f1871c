// Package list implements a paginated list widget for chat bots: an in-memory
// dataset, conjunctive equality filters, numbered inline buttons and the
// callback tokens that drive page navigation and item selection.
// It is platform-agnostic so the same widget can be reused across bot SDKs.
package list
