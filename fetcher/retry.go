package fetcher

// RetryPolicy bounds the resends of one segment.
type RetryPolicy struct {
	MaxRetries int
}

// Allow reports whether a request already sent attempts times may be sent again.
func (p RetryPolicy) Allow(attempts int) bool {
	return attempts <= p.MaxRetries
}
