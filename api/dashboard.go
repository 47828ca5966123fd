package api

import (
	"context"
	"net/http"

	"github.com/goliatone/go-hostel-admin/transport"
)

const dashboardPath = "/api/v3/admin/dashboard/"

// DashboardClient reads the dashboard aggregates.
type DashboardClient struct {
	doer Doer
}

func (c *DashboardClient) get(ctx context.Context, name string, out any) error {
	return c.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: dashboardPath + name}, out)
}

func (c *DashboardClient) Summary(ctx context.Context) (DashboardSummary, error) {
	var out DashboardSummary
	err := c.get(ctx, "summary", &out)
	return out, err
}

func (c *DashboardClient) GenderDistribution(ctx context.Context) ([]GenderDistributionEntry, error) {
	var out List[GenderDistributionEntry]
	err := c.get(ctx, "gender-distribution", &out)
	return out, err
}

func (c *DashboardClient) RecentUsers(ctx context.Context) ([]DashboardRecentUser, error) {
	var out List[DashboardRecentUser]
	err := c.get(ctx, "recent-users", &out)
	return out, err
}

func (c *DashboardClient) LatestAnnouncements(ctx context.Context) ([]Announcement, error) {
	var out List[Announcement]
	err := c.get(ctx, "latest-announcements", &out)
	return out, err
}
