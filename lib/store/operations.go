package store

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/channel"
	"github.com/ValentinKolb/dDocs/rpc/common"
)

// Operations is the maintenance facade of a store, bound to the default
// database's request channel. Obtained via DocumentStore.Operations.
type Operations struct {
	channel channel.IRequestChannel
}

// DatabaseStatistics is the server-side view of one database
type DatabaseStatistics struct {
	Documents int `json:"documents"`
}

// Statistics fetches the current statistics of the default database
func (o *Operations) Statistics(ctx context.Context) (DatabaseStatistics, error) {
	var stats DatabaseStatistics

	resp, err := o.channel.Execute(ctx, common.NewStatsRequest())
	if err != nil {
		return stats, err
	}

	if err := json.Unmarshal(resp.Meta, &stats); err != nil {
		return stats, fmt.Errorf("invalid statistics payload: %v", err)
	}
	return stats, nil
}

// Ping checks that the default database is reachable
func (o *Operations) Ping(ctx context.Context) error {
	_, err := o.channel.Execute(ctx, common.NewPingRequest())
	return err
}
