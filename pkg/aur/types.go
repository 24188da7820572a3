package aur

import (
	"context"

	rpc "github.com/Jguer/aur"
	"github.com/hashicorp/go-hclog"
)

// A Querier performs an RPC query.  *rpc.Client satisfies it.
type Querier interface {
	Get(context.Context, *rpc.Query) ([]rpc.Pkg, error)
}

// Fetcher retrieves package records from the AUR.
type Fetcher struct {
	l hclog.Logger
	q Querier
}
