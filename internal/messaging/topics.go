package messaging

const (
	// TopicOrderConfirmed carries domain.OrderConfirmedEvent, keyed by order id.
	TopicOrderConfirmed = "order.confirmed"

	// TopicCheckoutFailure is the dead-letter stream of post-charge
	// consistency failures, keyed by transaction id.
	TopicCheckoutFailure = "checkout.failure"
)
