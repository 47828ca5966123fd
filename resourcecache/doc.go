// Package resourcecache puts the query and mutation layers in front of the
// API resource clients.
//
// Reads go through query.Client under keys built by Keys:
//
//	resource::list[::params]   lists, one entry per distinct filter set
//	resource::detail::id       single records
//
// Writes go through mutation.Runner with the operations declared in
// DefaultTable, so a create invalidates the resource's lists, an update also
// invalidates the record's detail, and a delete evicts that detail. Every
// write also invalidates the dashboard.
//
//	res := resourcecache.New(apiClient, queries, runner)
//	zones, err := res.Zones.List(ctx)
//	_, err = res.Zones.Create(ctx, api.CreateZoneRequest{Name: "East Zone"})
//	// the next res.Zones.List refetches
package resourcecache
