package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Console menu entries.
const (
	menuSearch  = "Search"
	menuEdit    = "Edit a book"
	menuCancel  = "Cancel edit"
	menuDialog  = "Quick edit a book"
	menuDelete  = "Delete a book"
	menuRefresh = "Refresh"
	menuQuit    = "Quit"
)

// Console drives a BookListView from the terminal.
type Console struct {
	logger *zap.Logger
	view   *BookListView
	prompt PromptDriver
}

// NewConsole provides a console bound to view.
func NewConsole(logger *zap.Logger, view *BookListView, prompt PromptDriver) *Console {
	return &Console{logger: logger, view: view, prompt: prompt}
}

// Run mounts the view then loops on the menu until the user quits, aborts
// the menu or ctx is done. The view is closed on return.
func (c *Console) Run(ctx context.Context) error {
	defer c.view.Close()
	c.report("mount", c.view.FetchAll(ctx))

	for {
		if err := c.show(ctx); err != nil {
			return quitErr(err)
		}
		state := c.view.Snapshot()
		entries := c.menu(state)
		choice, err := c.prompt.Select(ctx, SelectConfig{Message: "What do you want to do?", Options: entries, PageSize: len(entries)})
		if err != nil {
			return quitErr(err)
		}
		if choice < 0 || choice >= len(entries) {
			continue
		}
		entry := entries[choice]
		if entry == menuQuit {
			return nil
		}
		err = c.do(ctx, entry, state)
		if errors.Is(err, ErrAborted) {
			continue
		}
		if err != nil {
			return quitErr(err)
		}
	}
}

// menu lists the entries matching the current mode. The submit entry
// carries the form button label.
func (c *Console) menu(state State) []string {
	entries := []string{state.SubmitLabel(), menuSearch}
	if len(state.Visible()) > 0 {
		entries = append(entries, menuEdit, menuDialog, menuDelete)
	}
	if state.Editing() {
		entries = append(entries, menuCancel)
	}
	return append(entries, menuRefresh, menuQuit)
}

// do runs one menu entry. Failures of the view are shown by the next
// listing so only prompt errors are returned.
func (c *Console) do(ctx context.Context, entry string, state State) error {
	switch entry {
	case menuSearch:
		query, err := c.prompt.Input(ctx, InputConfig{Message: "Search by title or author:", Default: state.Query})
		if err != nil {
			return err
		}
		c.view.Search(query)

	case menuEdit:
		book, err := c.pick(ctx, state.Visible())
		if err != nil {
			return err
		}
		c.report("edit", c.view.BeginEdit(book))

	case menuCancel:
		c.view.CancelEdit()

	case menuDialog:
		book, err := c.pick(ctx, state.Visible())
		if err != nil {
			return err
		}
		result, err := c.dialog(ctx, book)
		if err != nil {
			return err
		}
		c.report("dialog", c.view.ApplyDialog(ctx, book, result))

	case menuDelete:
		book, err := c.pick(ctx, state.Visible())
		if err != nil {
			return err
		}
		confirm := ConfirmFunc(func(ctx context.Context, message string) (bool, error) {
			return c.prompt.Confirm(ctx, ConfirmConfig{Message: message})
		})
		err = c.view.Delete(ctx, book.ID, confirm)
		if errors.Is(err, ErrAborted) {
			return err
		}
		c.report("delete", err)

	case menuRefresh:
		c.report("refresh", c.view.FetchAll(ctx))

	default:
		draft, err := c.form(ctx, state.Draft)
		if err != nil {
			return err
		}
		c.report("submit", c.view.Submit(ctx, draft))
	}
	return nil
}

// form asks for title and author, typing each answer into the view draft.
func (c *Console) form(ctx context.Context, draft Draft) (Draft, error) {
	title, err := c.prompt.Input(ctx, InputConfig{Message: "Title:", Default: draft.Title})
	if err != nil {
		return draft, err
	}
	_ = c.view.UpdateField(FieldTitle, title)
	author, err := c.prompt.Input(ctx, InputConfig{Message: "Author:", Default: draft.Author})
	if err != nil {
		return draft, err
	}
	_ = c.view.UpdateField(FieldAuthor, author)
	return c.view.Snapshot().Draft, nil
}

// dialog edits book in an EditDialog and reports what the user decided.
func (c *Console) dialog(ctx context.Context, book Book) (DialogResult, error) {
	dialog := OpenEditDialog(book)
	title, err := c.prompt.Input(ctx, InputConfig{Message: "Title:", Default: dialog.Draft().Title})
	if err != nil {
		return dialog.Dismiss(), err
	}
	_ = dialog.UpdateField(FieldTitle, title)
	author, err := c.prompt.Input(ctx, InputConfig{Message: "Author:", Default: dialog.Draft().Author})
	if err != nil {
		return dialog.Dismiss(), err
	}
	_ = dialog.UpdateField(FieldAuthor, author)
	save, err := c.prompt.Confirm(ctx, ConfirmConfig{Message: "Save Changes?", Default: true})
	if err != nil {
		return dialog.Dismiss(), err
	}
	if !save {
		return dialog.Dismiss(), nil
	}
	return dialog.Confirm(), nil
}

func (c *Console) pick(ctx context.Context, books []Book) (Book, error) {
	options := make([]string, len(books))
	for i, book := range books {
		options[i] = fmt.Sprintf("%s by %s", book.Title, book.Author)
	}
	i, err := c.prompt.Select(ctx, SelectConfig{Message: "Which book?", Options: options, PageSize: 10})
	if err != nil {
		return Book{}, err
	}
	if i < 0 || i >= len(books) {
		return Book{}, ErrAborted
	}
	return books[i], nil
}

// show prints the error line, the mode and the filtered list.
func (c *Console) show(ctx context.Context) error {
	state := c.view.Snapshot()
	var b strings.Builder
	b.WriteString("\n== Book List ==\n")
	if state.Error != "" {
		fmt.Fprintf(&b, "! %s\n", state.Error)
	}
	if state.Query != "" {
		fmt.Fprintf(&b, "search: %q\n", state.Query)
	}
	if state.Target != nil {
		fmt.Fprintf(&b, "editing: %s by %s\n", state.Target.Title, state.Target.Author)
	}
	if !state.Draft.IsEmpty() {
		fmt.Fprintf(&b, "form: %q by %q\n", state.Draft.Title, state.Draft.Author)
	}
	books := state.Visible()
	if len(books) == 0 {
		b.WriteString("(no books)\n")
	}
	for i, book := range books {
		fmt.Fprintf(&b, "%2d. %s\n    by %s\n", i+1, book.Title, book.Author)
	}
	return c.prompt.Info(ctx, b.String())
}

func (c *Console) report(op string, err error) {
	if err != nil {
		c.logger.Warn("view operation failed", zap.String("view.op", op), zap.String("view.message", UserMessage(err)), zap.Error(err))
	}
}

// quitErr turns the ways a user leaves the console into a clean exit.
func quitErr(err error) error {
	if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
