/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package teasink

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/suparena/dynascript/uibridge"
)

// RequestMsg delivers a bridge request to the Model.
type RequestMsg struct {
	Request *uibridge.Request
}

// ResultSetMsg reports that the current result set changed.
type ResultSetMsg struct {
	Table      string
	Expression string
	Rows       int
}

// StatusMsg replaces the status line.
type StatusMsg string

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards bridge requests into a bubbletea program.
type Sink struct {
	sender Sender
}

// New creates a Sink posting to sender.
func New(sender Sender) *Sink {
	return &Sink{sender: sender}
}

// Show posts the request as a RequestMsg. The Model answers it.
func (s *Sink) Show(req *uibridge.Request) {
	s.sender.Send(RequestMsg{Request: req})
}

// Status posts message as a StatusMsg.
func (s *Sink) Status(message string) {
	s.sender.Send(StatusMsg(message))
}
