package main

import "strings"

// FilterBooks keeps the books whose title or author contains query,
// ignoring case. Order is preserved and the input is never modified.
func FilterBooks(books []Book, query string) []Book {
	q := strings.ToLower(query)
	out := make([]Book, 0, len(books))
	for _, book := range books {
		if strings.Contains(strings.ToLower(book.Title), q) || strings.Contains(strings.ToLower(book.Author), q) {
			out = append(out, book)
		}
	}
	return out
}
