package main

// Phase tells which request, if any, a view is waiting for.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseSaving
	PhaseDeleting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseSaving:
		return "saving"
	case PhaseDeleting:
		return "deleting"
	}
	return "unknown"
}

// InFlight reports whether a request is outstanding.
func (p Phase) InFlight() bool {
	return p != PhaseIdle
}

// Submit button labels.
const (
	LabelProcessing = "Processing..."
	LabelUpdate     = "Update Book"
	LabelAdd        = "Add Book"
)

// State is everything a book list view shows. Target is nil in create mode.
type State struct {
	Books  []Book
	Draft  Draft
	Target *Book
	Query  string
	Phase  Phase
	Error  string
}

// Editing reports whether submit updates an existing book.
func (s State) Editing() bool {
	return s.Target != nil
}

// Busy reports whether mutating triggers must be inert.
func (s State) Busy() bool {
	return s.Phase.InFlight()
}

// Visible returns the books matching the current query.
func (s State) Visible() []Book {
	return FilterBooks(s.Books, s.Query)
}

// SubmitLabel returns the caption of the form submit button.
func (s State) SubmitLabel() string {
	switch {
	case s.Busy():
		return LabelProcessing
	case s.Editing():
		return LabelUpdate
	default:
		return LabelAdd
	}
}

// clone deep copies the state so it can leave the view lock.
func (s State) clone() State {
	c := s
	c.Books = append([]Book(nil), s.Books...)
	if s.Target != nil {
		t := *s.Target
		c.Target = &t
	}
	return c
}

type actionKind int

const (
	actStart actionKind = iota
	actFinish
	actFetched
	actSaved
	actFailed
	actDraft
	actField
	actEdit
	actCancel
	actQuery
)

// action describes one state transition. Only the fields relevant
// to its kind are read.
type action struct {
	kind    actionKind
	phase   Phase
	books   []Book
	book    Book
	draft   Draft
	name    string
	value   string
	message string
}

// reduce applies a to s and returns the new state. It never mutates s.
func reduce(s State, a action) State {
	switch a.kind {
	case actStart:
		s.Phase = a.phase
	case actFinish:
		s.Phase = PhaseIdle
	case actFetched:
		s.Books = append([]Book(nil), a.books...)
		s.Error = ""
	case actSaved:
		s.Draft = Draft{}
		s.Target = nil
		s.Error = ""
	case actFailed:
		s.Error = a.message
	case actDraft:
		s.Draft = a.draft
	case actField:
		d := s.Draft
		if d.Set(a.name, a.value) == nil {
			s.Draft = d
		}
	case actEdit:
		b := a.book
		s.Target = &b
		s.Draft = DraftOf(b)
	case actCancel:
		s.Target = nil
		s.Draft = Draft{}
	case actQuery:
		s.Query = a.value
	}
	return s
}
