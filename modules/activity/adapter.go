package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort is how other modules read the journal.
type ActivityPort interface {
	List(ctx context.Context, userID string) ([]Entry, error)
}

var (
	_ ActivityPort = (*ActivityAdapter)(nil)
	_ ActivityPort = (*ActivityModule)(nil)
)

// ActivityAdapter implements ActivityPort using the service container.
type ActivityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new ActivityAdapter.
func NewActivityAdapter(container mono.ServiceContainer) *ActivityAdapter {
	return &ActivityAdapter{container: container}
}

func (a *ActivityAdapter) List(ctx context.Context, userID string) ([]Entry, error) {
	req := ListActivityRequest{UserID: userID}
	var resp ListActivityResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListActivity,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", ServiceListActivity, err)
	}
	if resp.Entries == nil {
		return []Entry{}, nil
	}
	return resp.Entries, nil
}
