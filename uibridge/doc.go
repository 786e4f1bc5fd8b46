/*
Package uibridge carries alert and prompt requests from scripts to the
terminal UI.

Scripts never block on the UI: Alert, Prompt and ReportError return a
pending.Op at once. The bridge keeps a single FIFO queue and hands one
request at a time to its Sink; the next request is shown only after the
current one is answered with Ack, Answer or Cancel. There is no priority.

	bridge := uibridge.New(uibridge.NewHeadlessSink(os.Stdout, os.Stdin))
	defer bridge.Close()

	name, err := bridge.Prompt("What is your name?").Wait(ctx)
	if errors.IsCancelled(err) {
	    // dismissed
	}

Package teasink provides a Sink for bubbletea programs.
*/
package uibridge
