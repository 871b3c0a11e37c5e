package shared

// ProcessingState tracks an event through the coordinator's state machine.
type ProcessingState string

const (
	StateReceived         ProcessingState = "RECEIVED"
	StateEnriching        ProcessingState = "ENRICHING"
	StateAwaitingRate     ProcessingState = "AWAITING_RATE"
	StateWriting          ProcessingState = "WRITING"
	StateCommitted        ProcessingState = "COMMITTED"
	StateRetryableFailure ProcessingState = "RETRYABLE_FAILURE"
	StateDeadLettered     ProcessingState = "DEAD_LETTERED"
)

// DeadLetterReason classifies why an event was routed to the dead-letter sink
type DeadLetterReason string

const (
	ReasonMalformedEvent     DeadLetterReason = "MALFORMED_EVENT"
	ReasonNoRateAvailable    DeadLetterReason = "NO_RATE_AVAILABLE_AFTER_MAX_WAIT"
	ReasonStorageUnavailable DeadLetterReason = "STORAGE_UNAVAILABLE_AFTER_MAX_WAIT"
)
