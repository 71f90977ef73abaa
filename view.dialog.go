package main

// DialogResult is what an EditDialog reports to its owner.
type DialogResult struct {
	Draft     Draft
	Dismissed bool
}

// EditDialog edits a single book in isolation. It only holds a draft
// seeded when opened and never talks to the books service.
type EditDialog struct {
	book  Book
	draft Draft
}

// OpenEditDialog seeds a dialog from book.
func OpenEditDialog(book Book) *EditDialog {
	return &EditDialog{book: book, draft: DraftOf(book)}
}

// Book returns the book the dialog was opened for.
func (d *EditDialog) Book() Book {
	return d.book
}

// Draft returns the current local draft.
func (d *EditDialog) Draft() Draft {
	return d.draft
}

// UpdateField changes one field of the local draft.
func (d *EditDialog) UpdateField(name, value string) error {
	return d.draft.Set(name, value)
}

// Confirm hands the draft over. The owner is expected to close the dialog.
func (d *EditDialog) Confirm() DialogResult {
	return DialogResult{Draft: d.draft}
}

// Dismiss reports a cancellation without any draft.
func (d *EditDialog) Dismiss() DialogResult {
	return DialogResult{Dismissed: true}
}
