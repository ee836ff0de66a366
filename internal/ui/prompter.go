package ui

import (
	"context"

	"github.com/desertthunder/studyx/internal/tasks"
)

var _ tasks.Confirmer = (*Prompter)(nil)

type promptRequest struct {
	prompt string
	reply  chan bool
}

// Prompter answers [tasks.Confirmer] questions from inside a running program.
//
// Confirm blocks until the view answers or ctx ends.
type Prompter struct {
	requests chan promptRequest
}

func NewPrompter() *Prompter {
	return &Prompter{requests: make(chan promptRequest)}
}

func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := promptRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case answer := <-req.reply:
		return answer, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
