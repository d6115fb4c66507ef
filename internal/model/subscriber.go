package model

// Subscriber receives every dispatched alert, in dispatch order.
// Implementations must tolerate being called from the dispatcher's
// goroutine; a failing subscriber never stops dispatch to the others.
type Subscriber interface {
	HandleAlert(alert *Alert)
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(alert *Alert)

func (f SubscriberFunc) HandleAlert(alert *Alert) {
	f(alert)
}
