// Package app hosts a unit registry for the hotunit binary. It owns the
// configuration, an isolated logger, the registry and the health check
// server, decoupled from any specific entrypoint like a CLI.
package app
