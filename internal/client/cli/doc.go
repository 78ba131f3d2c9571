// Package cli provides the interactive authkeeper command-line client.
//
// App wires the configuration and the gRPC client into a small REPL: account
// commands (register, login, logout, refresh, forgot, reset, verify), profile
// lookups (me, user) and the admin commands (role, suspend, activate). A
// background watcher pings the server's health service and flips the prompt
// between online and offline.
package cli
