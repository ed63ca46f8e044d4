package domain

// ChatAnswer is the outcome of one chat query.
type ChatAnswer struct {
	Text             string     `json:"response"`
	Intent           IntentKind `json:"-"`
	Records          int        `json:"-"`
	FellThrough      bool       `json:"-"`
	CompletionFailed bool       `json:"-"`
}
