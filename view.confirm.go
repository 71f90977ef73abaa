package main

import "context"

// DeletePrompt is the question asked before a book is removed.
const DeletePrompt = "Are you sure you want to delete this book?"

// Confirmer asks a blocking yes or no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Answer returns a Confirmer which always decides the same way. It
// serves front-ends where the user already answered on a previous page.
func Answer(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) {
		return yes, nil
	})
}
