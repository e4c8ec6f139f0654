package usage

// Counter identifies one of the four usage accumulators on an account.
// The mapping from billable action to counter is fixed: creating a book on a
// trial plan consumes books, generating an illustration on a paid plan
// consumes illustrations, creating a story from a saved template consumes
// template_books, requesting an alternate rendering consumes bonus_variations.
type Counter string

const (
	CounterBooks           Counter = "books"
	CounterIllustrations   Counter = "illustrations"
	CounterTemplateBooks   Counter = "template_books"
	CounterBonusVariations Counter = "bonus_variations"
)

// Counters lists all accumulators in a stable order.
var Counters = []Counter{
	CounterBooks,
	CounterIllustrations,
	CounterTemplateBooks,
	CounterBonusVariations,
}

// Valid reports whether c names a known counter.
func (c Counter) Valid() bool {
	switch c {
	case CounterBooks, CounterIllustrations, CounterTemplateBooks, CounterBonusVariations:
		return true
	}
	return false
}
