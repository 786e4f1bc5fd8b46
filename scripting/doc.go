/*
Package scripting hosts the JavaScript runtime that user scripts run in.

A Host owns one goja runtime and a single-goroutine job loop. Every piece of
script code, from a command callback to a promise continuation, runs as a job
on that loop, so two commands never interleave inside a synchronous run of
code. Remote work (queries, persists, alerts, prompts) runs elsewhere and
posts its completion back to the loop as a job.

Scripts reach the host through the native module "dynascript":

	const session = require("dynascript").session;
	const ui = require("dynascript").ui;

	session.registerCommand("count", () => {
	    return session.query('pk^="0"', { table: "inventory" }).then(rs => {
	        session.currentResultSet = rs;
	        return ui.alert("Length: " + rs.rows.length);
	    });
	});

Invoking a command returns a pending operation that settles once the
callback's promise chain has settled. A failed chain, whether thrown, a
rejected return value, an unhandled rejection or a rejected attribute write,
fails the operation and is reported to the user interface.

The "dynascript/os" module runs processes and reads the environment. It is
denied unless the host is created with WithPermissions:

	const os = require("dynascript/os");
	os.system("git", "rev-parse", "HEAD").then(out => ui.print(out));
*/
package scripting
