/*
Package logging builds the structured logger shared by every component.

Records are written by log/slog's text handler, either to a file or to
stderr. Components take the logger through a WithLogger option and fall back
to slog.Default when none is given.
*/
package logging
