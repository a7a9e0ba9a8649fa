// Package domain defines the MCP tool surface of the grid engine: input
// and result schemas, tool metadata, and the handlers that bind them to
// an Engine. Handlers stay transport-free so stdio and HTTP runs share
// the same behavior.
package domain
