package health

import "context"

// DBPinger checks storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks suggestion cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
