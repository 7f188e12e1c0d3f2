package travelbot

// Version is the library version, stamped into builds and reported by
// the CLI and the MCP server.
var Version = "0.1.0"
