package api

import (
	"context"
	"sync"

	"cqwealth-client/internal/model"
)

// Overview fetches the dashboard summary and the earnings snapshot in
// parallel, the way the home screen loads. There is no ordering between the
// two fetches; if either fails the whole overview fails.
func (c *Client) Overview(ctx context.Context) (*model.DashboardSummary, *model.EarningsSnapshot, error) {
	var (
		wg       sync.WaitGroup
		dash     *model.DashboardSummary
		earnings *model.EarningsSnapshot
		dashErr  error
		earnErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dash, dashErr = c.GetDashboard(ctx)
	}()
	go func() {
		defer wg.Done()
		earnings, earnErr = c.GetEarnings(ctx)
	}()
	wg.Wait()

	if dashErr != nil {
		return nil, nil, dashErr
	}
	if earnErr != nil {
		return nil, nil, earnErr
	}
	return dash, earnings, nil
}
