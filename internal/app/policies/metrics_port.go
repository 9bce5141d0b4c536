package policies

// BookingMetrics receives lifecycle counters from the booking handlers.
type BookingMetrics interface {
	BookingCreated()
	BookingRejected(reason string)
	BookingTransitioned(transition string)
}

// ReviewMetrics receives counters from the review handlers.
type ReviewMetrics interface {
	ReviewSubmitted(rating int)
}

// NoopMetrics satisfies every metrics port and records nothing.
type NoopMetrics struct{}

func (NoopMetrics) BookingCreated()            {}
func (NoopMetrics) BookingRejected(string)     {}
func (NoopMetrics) BookingTransitioned(string) {}
func (NoopMetrics) ReviewSubmitted(int)        {}
