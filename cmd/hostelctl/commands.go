package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/allocation"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/auth"
	"github.com/goliatone/go-hostel-admin/pkg/di"
)

const TextCodeNotSignedIn = "NOT_SIGNED_IN"

type command struct {
	name    string
	summary string
	// route is the console page the command stands in for; the auth gate
	// decides access from it.
	route string
	run   func(ctx context.Context, c *di.Container, args []string, out io.Writer) error
}

var commands = []command{
	{"login", "sign in with -email and -password", auth.LoginPath, cmdLogin},
	{"logout", "sign out and drop cached data", "", cmdLogout},
	{"whoami", "show the signed-in administrator", auth.DashboardPath, cmdWhoami},
	{"summary", "dashboard totals", auth.DashboardPath, cmdSummary},
	{"hostels", "list hostels", "/hostels", cmdHostels},
	{"zones", "list zones and their load", "/zones", cmdZones},
	{"applicants", "list applicants", "/applicants", cmdApplicants},
	{"assign", "place -members in -hostel after a capacity check", "/allocation", cmdAssign},
	{"assign-all", "auto-assign every unassigned applicant", "/allocation", cmdAssignAll},
	{"export-csv", "write the applicants CSV to -out", "/applicants", cmdExportCSV},
}

func dispatch(ctx context.Context, c *di.Container, name string, args []string, out io.Writer) error {
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if cmd.route != "" && cmd.route != auth.LoginPath {
			if d := c.Gate().Check(cmd.route); !d.Allow {
				return errors.New("not signed in, run hostelctl login", errors.CategoryAuth).
					WithTextCode(TextCodeNotSignedIn)
			}
		}
		return cmd.run(ctx, c, args, out)
	}
	return errors.New("unknown command "+name, errors.CategoryBadInput).
		WithTextCode("UNKNOWN_COMMAND")
}

func newFlags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func cmdLogin(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := newFlags("login", out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (default $HOSTEL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("HOSTEL_PASSWORD")
	}
	if *email == "" || *password == "" {
		return errors.NewValidation("email and password are required",
			errors.FieldError{Field: "email", Message: "required", Value: *email},
			errors.FieldError{Field: "password", Message: "required"},
		)
	}

	user, err := c.Auth().Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func cmdLogout(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	if err := c.Auth().Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "signed out")
	return nil
}

func cmdWhoami(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	user := c.Session().User()
	if user == nil {
		fmt.Fprintln(out, "signed in (no profile in session)")
		return nil
	}
	fmt.Fprintf(out, "%s <%s>", user.Name, user.Email)
	if user.IsAdmin {
		fmt.Fprint(out, " admin")
	}
	fmt.Fprintln(out)
	return nil
}

func cmdSummary(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	s, err := c.Resources().Dashboard.Summary(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "applicants\t%d\n", s.TotalUsers)
	fmt.Fprintf(w, "assigned\t%d\n", s.AssignedUsers)
	fmt.Fprintf(w, "hostels\t%d\n", s.TotalHostels)
	fmt.Fprintf(w, "zones\t%d\n", s.ZonesCount)
	fmt.Fprintf(w, "occupancy\t%.1f%%\n", s.OccupancyRate)
	return w.Flush()
}

func cmdHostels(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := newFlags("hostels", out)
	gender := fs.String("gender", "", "only hostels open to male or female applicants")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hostels, err := c.Resources().Hostels.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tGENDER\tFREE\tCAPACITY")
	for _, h := range allocation.HostelsForGender(hostels, *gender) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", h.ID, h.Name, h.Location, h.Gender, h.RemainingCapacity, h.Capacity)
	}
	return w.Flush()
}

func cmdZones(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := newFlags("zones", out)
	capacity := fs.Int("capacity", allocation.DefaultZoneCapacity, "nominal applicants per zone")
	if err := fs.Parse(args); err != nil {
		return err
	}

	zones, err := c.Resources().Zones.List(ctx)
	if err != nil {
		return err
	}
	applicants, err := c.Resources().Applicants.List(ctx, api.ApplicantFilters{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ZONE\tAPPLICANTS\tCAPACITY\tLOAD")
	for _, load := range allocation.ZoneOccupancy(applicants, zones, *capacity) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", load.Zone.Name, load.Used, load.Max, load.Percent)
	}
	return w.Flush()
}

func cmdApplicants(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := newFlags("applicants", out)
	gender := fs.String("gender", "", "male, female or all")
	search := fs.String("search", "", "name or email contains")
	unassigned := fs.Bool("unassigned", false, "only applicants without a hostel")
	if err := fs.Parse(args); err != nil {
		return err
	}

	applicants, err := c.Resources().Applicants.List(ctx, api.ApplicantFilters{SearchTerm: *search, Gender: *gender})
	if err != nil {
		return err
	}
	if *unassigned {
		applicants = allocation.UnassignedApplicants(applicants)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tZONE\tHOSTEL")
	for _, a := range applicants {
		hostel := "-"
		if a.HostelName != nil {
			hostel = *a.HostelName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Gender, a.Zone, hostel)
	}
	return w.Flush()
}

func cmdAssign(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := newFlags("assign", out)
	hostel := fs.String("hostel", "", "hostel id")
	members := fs.String("members", "", "comma separated member ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var ids []api.ID
	for _, id := range strings.Split(*members, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, api.ID(id))
		}
	}

	if err := c.Assigner().ManualAssign(ctx, api.ID(strings.TrimSpace(*hostel)), ids); err != nil {
		return err
	}
	fmt.Fprintf(out, "assigned %d member(s) to hostel %s\n", len(ids), *hostel)
	return nil
}

func cmdAssignAll(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	resp, err := c.Resources().Hostels.AssignAll(ctx)
	if err != nil {
		return err
	}
	msg := resp.Message
	if msg == "" {
		msg = "assignment finished"
	}
	fmt.Fprintf(out, "%s: %d assigned, %d unassigned\n", msg, resp.AssignedCount, resp.UnassignedCount)
	return nil
}

func cmdExportCSV(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := newFlags("export-csv", out)
	path := fs.String("out", "applicants.csv", "output file, - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := c.Resources().Applicants.CSV(ctx)
	if err != nil {
		return err
	}
	if *path == "-" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(*path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write csv")
	}
	fmt.Fprintf(out, "wrote %d bytes to %s\n", len(data), *path)
	return nil
}
