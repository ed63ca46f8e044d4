package domain

type IntentKind string

const (
	IntentCount         IntentKind = "count"
	IntentLatestClosing IntentKind = "latest_closing"
	IntentGeneric       IntentKind = "generic"
)

// Intent is the response strategy chosen for a query. Location is only set
// for IntentCount; an empty Location means no address restriction.
type Intent struct {
	Kind     IntentKind
	Location string
}
