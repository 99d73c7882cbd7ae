package channel

import (
	"context"
	"github.com/ValentinKolb/dDocs/rpc/common"
)

// IRequestChannel is the interface for the request-dispatch channel of one
// logical database. A channel is created once per database name and reused
// by every session and key generator addressing that database.
type IRequestChannel interface {
	// Database returns the logical database this channel is bound to
	Database() string
	// Conventions returns the store-wide conventions instance the channel
	// was created with
	Conventions() *common.Conventions
	// Execute sends a request message to the database and returns the
	// response message. The returned message always has the same type as
	// the request; protocol level errors are returned as Go errors.
	Execute(ctx context.Context, req *common.Message) (*common.Message, error)
	// Close releases idle connections. The channel stays usable afterwards.
	Close() error
}
