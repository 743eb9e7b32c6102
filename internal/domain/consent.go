package domain

// ConsentState is the marketing consent status a customer carries on the
// platform. Only ConsentSubscribed authorizes a send; every other state
// (including unknown values from future platform versions) does not.
type ConsentState string

const (
	ConsentSubscribed    ConsentState = "subscribed"
	ConsentNotSubscribed ConsentState = "not_subscribed"
	ConsentUnsubscribed  ConsentState = "unsubscribed"
	ConsentPending       ConsentState = "pending"
	ConsentRedacted      ConsentState = "redacted"
)
