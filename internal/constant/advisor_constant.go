package constant

const (
	// ContinuationMarker is the reserved message a caller sends instead of
	// real user content to drive the next automated phase of a session.
	ContinuationMarker = "__continue__"

	// ResponseSeparator joins the conversational reply with appended
	// status sections in a single turn response.
	ResponseSeparator = "\n\n---\n\n"
)
