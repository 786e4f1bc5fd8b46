/*
Package registry provides the thread-safe name registry behind the command
set of a session.

	commands := registry.New[*scripting.Command]()
	commands.Register("bla", cmd)   // last writer wins
	cmd, ok := commands.Lookup("bla")
	names := commands.Names()       // sorted, for the command palette

Names are case-sensitive. A Registry belongs to one session; there is no
process-wide registry.
*/
package registry
