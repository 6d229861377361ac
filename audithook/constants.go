package audithook

// Action constants for audit events.
const (
	// Alert actions
	ActionAlertRegistered  = "alert.registered"
	ActionDeliveryRecorded = "delivery.recorded"

	// Publisher actions
	ActionPublisherRegistered = "publisher.registered"
	ActionSubmissionAccepted  = "submission.accepted"
	ActionSubmissionRejected  = "submission.rejected"
	ActionRevenueDistributed  = "revenue.distributed"
	ActionPublisherSlashed    = "publisher.slashed"
	ActionStakeWithdrawn      = "stake.withdrawn"

	// Subscriber actions
	ActionSubscriberCreated = "subscriber.created"
	ActionBalanceChanged    = "balance.changed"
	ActionSubscriberCharged = "subscriber.charged"

	// Orchestration actions
	ActionDeliveryProcessed   = "delivery.processed"
	ActionDeliveryCompensated = "delivery.compensated"
)

// Resource constants for audit events.
const (
	ResourceAlert      = "alert"
	ResourceDelivery   = "delivery"
	ResourcePublisher  = "publisher"
	ResourceSubscriber = "subscriber"
	ResourceReceipt    = "receipt"
)

// Category constants for audit events.
const (
	CategoryAlerts     = "alerts"
	CategoryPublishing = "publishing"
	CategoryPayment    = "payment"
	CategoryStake      = "stake"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
