/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package uibridge

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// HeadlessSink writes requests as lines of text. Alerts and errors are
// acknowledged at once. Prompts read one line from the input; without an
// input, or at end of input, prompts are cancelled.
type HeadlessSink struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
}

// NewHeadlessSink creates a sink writing to out and reading answers from in.
// in may be nil.
func NewHeadlessSink(out io.Writer, in io.Reader) *HeadlessSink {
	s := &HeadlessSink{out: out}
	if in != nil {
		s.in = bufio.NewReader(in)
	}
	return s
}

// Status writes message as a line of its own.
func (s *HeadlessSink) Status(message string) {
	s.printf("%s\n", message)
}

// Show renders the request and answers it. Only the dispatcher calls Show,
// so reading the answer needs no lock.
func (s *HeadlessSink) Show(req *Request) {
	switch req.Kind {
	case KindPrompt:
		s.printf("%s ", req.Message)
		if s.in == nil {
			s.printf("\n")
			req.Cancel()
			return
		}
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			s.printf("\n")
			req.Cancel()
			return
		}
		req.Answer(strings.TrimRight(line, "\r\n"))
	case KindError:
		s.printf("error: %s\n", req.Message)
		req.Ack()
	default:
		s.printf("%s\n", req.Message)
		req.Ack()
	}
}

func (s *HeadlessSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
