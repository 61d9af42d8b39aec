// Package cli builds the hotunit command tree. It translates flags and an
// optional config file into app.Config, runs one subcommand against an
// app.App, and reports usage problems as an ExitError carrying the process
// exit code.
package cli
