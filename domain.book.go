package main

// Book represents a book entity as served by the books service.
// The identifier is assigned by the server and never changes.
type Book struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Draft is the unsaved title and author pair of a form.
type Draft struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Draft form field names.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
)

// DraftOf seeds a draft from an existing book.
func DraftOf(book Book) Draft {
	return Draft{Title: book.Title, Author: book.Author}
}

// IsEmpty reports whether nothing was typed in either field.
func (d Draft) IsEmpty() bool {
	return d.Title == "" && d.Author == ""
}

// Complete reports whether title and author are both non-empty. The
// values are sent as typed, so anything but an empty string counts.
func (d Draft) Complete() bool {
	return d.Title != "" && d.Author != ""
}

// Set assigns a field by its form name.
func (d *Draft) Set(name, value string) error {
	switch name {
	case FieldTitle:
		d.Title = value
	case FieldAuthor:
		d.Author = value
	default:
		return unknownFieldError(name)
	}
	return nil
}

type unknownFieldError string

func (u unknownFieldError) Error() string {
	return "unknown draft field " + string(u)
}
