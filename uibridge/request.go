/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package uibridge

import (
	"sync"
)

// Kind identifies what a request asks the UI to do.
type Kind int

const (
	KindAlert Kind = iota
	KindPrompt
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindPrompt:
		return "prompt"
	case KindError:
		return "error"
	}
	return "alert"
}

// Request is one display request handed to a Sink. The sink answers it
// exactly once with Ack, Answer or Cancel; later answers are ignored.
type Request struct {
	ID      string
	Kind    Kind
	Message string

	once  sync.Once
	reply chan reply
}

type reply struct {
	value     string
	cancelled bool
}

func newRequest(id string, kind Kind, message string) *Request {
	return &Request{
		ID:      id,
		Kind:    kind,
		Message: message,
		reply:   make(chan reply, 1),
	}
}

// Ack acknowledges an alert or error display.
func (r *Request) Ack() {
	r.send(reply{})
}

// Answer supplies the user's input to a prompt.
func (r *Request) Answer(value string) {
	r.send(reply{value: value})
}

// Cancel dismisses the request without input.
func (r *Request) Cancel() {
	r.send(reply{cancelled: true})
}

func (r *Request) send(rep reply) {
	r.once.Do(func() {
		r.reply <- rep
	})
}

// Sink renders requests. Show is called from the bridge's dispatcher
// goroutine, one request at a time; the next request is not shown until the
// current one is answered.
type Sink interface {
	Show(req *Request)
}

// StatusSink is implemented by sinks that keep a status line. Status must
// not block on user input.
type StatusSink interface {
	Status(message string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(req *Request)

func (f SinkFunc) Show(req *Request) {
	f(req)
}
