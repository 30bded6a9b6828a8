package mockmarket

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/platforms/transfermarket"
)

type Client struct {
	mock.Mock
}

func (m *Client) FetchTransfers(ctx context.Context, params transfermarket.FetchParams) ([]model.Transfer, error) {
	args := m.Called(ctx, params)

	var r []model.Transfer
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Transfer)
	}
	return r, args.Error(1)
}
