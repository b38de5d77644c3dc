// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt asks line-oriented questions on a terminal. Every question
// honors context cancellation, so an interrupt unblocks a pending read.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pdiddy/md2epub/internal/term"
)

// ErrInterrupted is returned when the context is cancelled while waiting
// for input.
var ErrInterrupted = errors.New("interrupted")

// Prompter reads answers from an input stream and writes questions to an
// output stream.
type Prompter struct {
	out   io.Writer
	lines chan string
	done  chan struct{}
	once  sync.Once

	// stopped is closed when the reader goroutine returns.
	stopped chan struct{}
}

// New returns a Prompter reading from in and writing to out. Input is read
// by a background goroutine that stops at end of input or on Close.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		out:     out,
		lines:   make(chan string),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go func() {
		defer close(p.stopped)
		defer close(p.lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case p.lines <- sc.Text():
			case <-p.done:
				return
			}
		}
	}()
	return p
}

// Close stops delivering input. Later questions return io.EOF. A reader
// blocked inside in.Read returns only once that read completes.
func (p *Prompter) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case <-p.done:
		return "", io.EOF
	case line, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// Ask prints label with its default and returns the answer, or def when the
// answer is empty. When validate is non-nil the question repeats until it
// accepts the answer.
func (p *Prompter) Ask(ctx context.Context, label, def string, validate func(string) error) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.out, "? %s [%s] ", label, def)
		} else {
			fmt.Fprintf(p.out, "? %s ", label)
		}
		answer, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if validate == nil {
			return answer, nil
		}
		if err := validate(answer); err != nil {
			fmt.Fprintf(p.out, "%s %v\n", term.Fail(), err)
			continue
		}
		return answer, nil
	}
}

// Text asks a free-form question.
func (p *Prompter) Text(ctx context.Context, label, def string) (string, error) {
	return p.Ask(ctx, label, def, nil)
}

// Required asks until a non-blank answer is given. msg is shown after a
// blank answer.
func (p *Prompter) Required(ctx context.Context, label, def, msg string) (string, error) {
	return p.Ask(ctx, label, def, func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	})
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "? %s (%s) ", label, hint)
		answer, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintf(p.out, "%s Please answer y or n\n", term.Fail())
	}
}

// Select lists choices numbered from 1 and returns the zero-based index of
// the chosen one.
func (p *Prompter) Select(ctx context.Context, label string, choices []string) (int, error) {
	fmt.Fprintf(p.out, "? %s\n", label)
	for i, c := range choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}
	for {
		fmt.Fprintf(p.out, "Choose [1-%d]: ", len(choices))
		answer, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "%s Enter a number between 1 and %d\n", term.Fail(), len(choices))
	}
}
