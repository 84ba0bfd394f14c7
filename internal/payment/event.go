package payment

// Event is a verified processor notification. The concrete type says what happened:
// IntentSucceeded, IntentFailed, IntentRequiresAction or Unknown.
type Event interface {
	EventID() string
	EventType() string
	isEvent()
}

type envelope struct {
	ID   string
	Type string
}

func (e envelope) EventID() string   { return e.ID }
func (e envelope) EventType() string { return e.Type }
func (envelope) isEvent()            {}

type IntentSucceeded struct {
	envelope
	IntentID string
	Amount   int64
	Currency string
	Metadata map[string]string
}

type IntentFailed struct {
	envelope
	IntentID string
	Reason   string
	Metadata map[string]string
}

// IntentRequiresAction means the customer still has to authenticate; the payment stays pending.
type IntentRequiresAction struct {
	envelope
	IntentID string
}

// Unknown is any event type the reconciler does not act on.
type Unknown struct {
	envelope
}

const (
	TypeIntentSucceeded      = "payment_intent.succeeded"
	TypeIntentFailed         = "payment_intent.payment_failed"
	TypeIntentRequiresAction = "payment_intent.requires_action"
)

// Intent is an opened payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}
