// Package teasink connects a uibridge.Bridge to a bubbletea program.
//
// The Sink posts each request as a RequestMsg; the Model shows it and
// answers it from the keyboard. When no request is shown the Model's text
// input is the command palette.
package teasink
