// Package cli is the interactive terminal front end of userforms.
//
// It wires configuration, the key-value store, both form flows and a REPL.
// Commands:
//
//	signup          fill in and submit the signup form
//	list            show stored users, numbered from 1
//	edit [n]        edit user n, or continue the edit in progress
//	cancel          drop the edit in progress
//	delete [n]      delete user n after a y/N confirmation
//	clear           remove every stored user
//	fields          show the dynamic login fields
//	login           log in; asks for every dynamic field too
//	exit | quit     leave
//
// The REPL is started via App.Run(ctx) and blocks until the user exits.
package cli
