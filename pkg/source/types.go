package source

import (
	"github.com/hashicorp/go-hclog"
)

// A RepoMngr retrieves build recipes from the AUR git host.
type RepoMngr struct {
	l       hclog.Logger
	baseURL string
}
