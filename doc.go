/*
Package dynascript embeds a JavaScript runtime in a DynamoDB browser.

User scripts register commands, run asynchronous queries against remote
tables, inspect and edit the rows that come back, and talk to the user
through alerts and prompts. A Session ties the pieces together:

	cfg, _ := config.Load("dynascript.yaml")
	session, err := dynascript.Open(ctx, cfg, uibridge.NewHeadlessSink(os.Stdout, os.Stdin), logger)
	if err != nil {
	    return err
	}
	defer session.Close()

	if err := session.Run(ctx, "bla"); err != nil {
	    // errors.ErrUnknownCommand, errors.ErrTableNotFound, ...
	}

A script registering that command:

	const session = require("dynascript").session;
	const ui = require("dynascript").ui;

	session.registerCommand("bla", () => {
	    return session.query('pk^="0"', { table: "inventory" }).then(rs => {
	        session.currentResultSet = rs;
	        return ui.alert("Length: " + rs.rows.length);
	    });
	});

Packages:
  - resultset: the in-memory rows scripts read and mutate
  - queryexpr: the query expression language and its DynamoDB plan
  - engine: asynchronous queries and write-back with retry and timeouts
  - datastore: the table store interface, with DynamoDB and in-memory versions
  - uibridge: the FIFO queue of alerts, prompts and error reports
  - registry: the command registry
  - scripting: the goja host and its job loop
  - config, logging: ambient settings
*/
package dynascript
