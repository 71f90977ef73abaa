package main

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// BookListView mirrors the remote collection and drives the create/edit
// form. At most one request is outstanding at a time: every trigger that
// would start another one while the phase is not idle returns ErrBusy
// without effect. Responses arriving after Close are discarded.
type BookListView struct {
	logger *zap.Logger
	api    BooksAPI

	mu     sync.Mutex
	state  State
	closed bool

	scope  context.Context
	cancel context.CancelFunc
}

// NewBookListView provides an empty view. Call FetchAll to mount it.
func NewBookListView(logger *zap.Logger, api BooksAPI) *BookListView {
	scope, cancel := context.WithCancel(context.Background())
	return &BookListView{
		logger: logger,
		api:    api,
		state:  State{Books: []Book{}},
		scope:  scope,
		cancel: cancel,
	}
}

// Snapshot returns a copy of the current state.
func (v *BookListView) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Close tears the view down. Outstanding requests are cancelled.
func (v *BookListView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.cancel()
}

// FetchAll replaces the collection with the one held by the service.
func (v *BookListView) FetchAll(ctx context.Context) error {
	if err := v.begin(PhaseFetching); err != nil {
		return err
	}
	defer v.finish()
	return v.fetch(ctx)
}

// Submit stores draft as the form content then creates a book, or updates
// the edit target when there is one. On success the form goes back to
// create mode and the collection is fetched again. On failure the draft
// and the edit target are kept for a retry.
func (v *BookListView) Submit(ctx context.Context, draft Draft) error {
	v.mu.Lock()
	if err := v.checkIdle(); err != nil {
		v.mu.Unlock()
		return err
	}
	v.dispatch(action{kind: actDraft, draft: draft})
	if !draft.Complete() {
		verr := newViewError(KindValidation, missingDraftField(draft))
		v.dispatch(action{kind: actFailed, message: verr.Message})
		v.mu.Unlock()
		return verr
	}
	var target *Book
	if v.state.Target != nil {
		t := *v.state.Target
		target = &t
	}
	v.dispatch(action{kind: actStart, phase: PhaseSaving})
	v.mu.Unlock()
	defer v.finish()

	rctx, done := v.requestContext(ctx)
	defer done()
	var err error
	if target != nil {
		err = v.api.Update(rctx, target.ID, draft)
	} else {
		err = v.api.Create(rctx, draft)
	}
	if err != nil {
		v.logger.Error("view: failed to save book", zap.Bool("book.update", target != nil), zap.Error(err))
		return v.fail(newViewError(KindMutation, err))
	}

	if !v.apply(action{kind: actSaved}) {
		return ErrViewClosed
	}
	return v.resync(ctx)
}

// BeginEdit switches the form to edit mode for book, seeding the draft.
func (v *BookListView) BeginEdit(book Book) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkIdle(); err != nil {
		return err
	}
	v.dispatch(action{kind: actEdit, book: book})
	return nil
}

// CancelEdit returns the form to create mode with an empty draft.
func (v *BookListView) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dispatch(action{kind: actCancel})
}

// UpdateField changes one field of the form draft.
func (v *BookListView) UpdateField(name, value string) error {
	if err := new(Draft).Set(name, value); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dispatch(action{kind: actField, name: name, value: value})
	return nil
}

// Delete asks confirm before removing the book identified by id. A declined
// confirmation is a no-op. The edit target is left as is even when it is
// the deleted book.
func (v *BookListView) Delete(ctx context.Context, id string, confirm Confirmer) error {
	v.mu.Lock()
	err := v.checkIdle()
	v.mu.Unlock()
	if err != nil {
		return err
	}

	ok, err := confirm.Confirm(ctx, DeletePrompt)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err = v.begin(PhaseDeleting); err != nil {
		return err
	}
	defer v.finish()

	rctx, done := v.requestContext(ctx)
	defer done()
	err = v.api.Delete(rctx, id)
	if err != nil {
		v.logger.Error("view: failed to delete book", zap.String("book.id", id), zap.Error(err))
		if errors.Is(err, ErrBookNotFound) {
			return v.fail(newViewError(KindDeleteNotFound, err))
		}
		return v.fail(newViewError(KindDelete, err))
	}
	return v.resync(ctx)
}

// Search sets the query and returns the matching books. It never issues
// a request and never changes the collection.
func (v *BookListView) Search(query string) []Book {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dispatch(action{kind: actQuery, value: query})
	return v.state.Visible()
}

// ApplyDialog turns what an EditDialog reported for book into an update.
// A dismissal does nothing. The form draft and edit target are untouched.
func (v *BookListView) ApplyDialog(ctx context.Context, book Book, result DialogResult) error {
	if result.Dismissed {
		return nil
	}
	draft := result.Draft

	v.mu.Lock()
	if err := v.checkIdle(); err != nil {
		v.mu.Unlock()
		return err
	}
	if !draft.Complete() {
		verr := newViewError(KindValidation, missingDraftField(draft))
		v.dispatch(action{kind: actFailed, message: verr.Message})
		v.mu.Unlock()
		return verr
	}
	v.dispatch(action{kind: actStart, phase: PhaseSaving})
	v.mu.Unlock()
	defer v.finish()

	rctx, done := v.requestContext(ctx)
	defer done()
	err := v.api.Update(rctx, book.ID, draft)
	if err != nil {
		v.logger.Error("view: failed to save dialog draft", zap.String("book.id", book.ID), zap.Error(err))
		return v.fail(newViewError(KindMutation, err))
	}
	return v.resync(ctx)
}

// fetch runs the list request. The caller holds the gate.
func (v *BookListView) fetch(ctx context.Context) error {
	rctx, done := v.requestContext(ctx)
	defer done()
	books, err := v.api.List(rctx)
	if err != nil {
		v.logger.Error("view: failed to fetch books", zap.Error(err))
		return v.fail(newViewError(KindFetch, err))
	}
	if !v.apply(action{kind: actFetched, books: books}) {
		return ErrViewClosed
	}
	return nil
}

// resync fetches the collection without releasing the gate held by a mutation.
func (v *BookListView) resync(ctx context.Context) error {
	if !v.apply(action{kind: actStart, phase: PhaseFetching}) {
		return ErrViewClosed
	}
	return v.fetch(ctx)
}

// begin moves an idle view into phase.
func (v *BookListView) begin(phase Phase) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkIdle(); err != nil {
		return err
	}
	v.dispatch(action{kind: actStart, phase: phase})
	return nil
}

// finish releases the gate. It runs deferred so a failing or panicking
// request never leaves the view busy.
func (v *BookListView) finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dispatch(action{kind: actFinish})
}

// fail records the message of verr unless the view was closed meanwhile.
func (v *BookListView) fail(verr *ViewError) error {
	if !v.apply(action{kind: actFailed, message: verr.Message}) {
		return ErrViewClosed
	}
	return verr
}

// apply dispatches a unless the view was closed. It reports whether a was applied.
func (v *BookListView) apply(a action) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	v.dispatch(a)
	return true
}

// checkIdle must be called with the lock held.
func (v *BookListView) checkIdle() error {
	if v.closed {
		return ErrViewClosed
	}
	if v.state.Phase.InFlight() {
		return ErrBusy
	}
	return nil
}

// dispatch must be called with the lock held.
func (v *BookListView) dispatch(a action) {
	v.state = reduce(v.state, a)
}

// requestContext derives a context cancelled by either ctx or the view teardown.
func (v *BookListView) requestContext(ctx context.Context) (context.Context, func()) {
	rctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.scope, cancel)
	return rctx, func() {
		stop()
		cancel()
	}
}

// missingDraftField names the first empty field of an incomplete draft.
func missingDraftField(d Draft) error {
	if d.Title == "" {
		return missingFieldError(FieldTitle)
	}
	return missingFieldError(FieldAuthor)
}
