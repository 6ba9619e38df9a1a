package core

// Frame is a marshaled JSON event ready for the transport.
type Frame []byte

// SignalConnection abstracts a client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the caller.
// Drops are counted, never retried: delivery is best effort.
type PublishResult struct {
	SentTo  int
	Dropped int
}
