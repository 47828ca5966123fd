package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/allocation"
	"github.com/goliatone/go-hostel-admin/auth"
	"github.com/goliatone/go-hostel-admin/config"
	"github.com/goliatone/go-hostel-admin/pkg/di"
	"github.com/goliatone/go-hostel-admin/pkg/testsupport"
)

func newTestContainer(t *testing.T) (*di.Container, *testsupport.FakeAPI) {
	t.Helper()

	fake := testsupport.NewFakeAPI(t, testsupport.DefaultSeed())
	cfg := config.Default()
	cfg.API.BaseURL = fake.URL
	cfg.API.RateLimit = 0
	cfg.API.Breaker.Enabled = false
	cfg.Query.Retry = 0
	cfg.Auth = auth.StorageConfig{Type: auth.StorageMemory}

	c, err := di.NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, fake
}

func runCommand(t *testing.T, c *di.Container, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := dispatch(context.Background(), c, args[0], args[1:], &out)
	return out.String(), err
}

func TestDispatch_RequiresLogin(t *testing.T) {
	c, fake := newTestContainer(t)

	_, err := runCommand(t, c, "hostels")
	var e *errors.Error
	if !errors.As(err, &e) || e.TextCode != TextCodeNotSignedIn {
		t.Fatalf("expected not signed in error, got %v", err)
	}
	if n := fake.Requests("GET", "/api/v2/crm/admin/hostels/"); n != 0 {
		t.Errorf("expected no request before login, got %d", n)
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	c, _ := newTestContainer(t)
	if _, err := runCommand(t, c, "frobnicate"); !errors.IsCategory(err, errors.CategoryBadInput) {
		t.Errorf("expected bad input, got %v", err)
	}
}

func TestDispatch_LoginValidation(t *testing.T) {
	c, _ := newTestContainer(t)
	t.Setenv("HOSTEL_PASSWORD", "")

	_, err := runCommand(t, c, "login", "-email", "admin@example.org")
	if !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDispatch_Session(t *testing.T) {
	c, _ := newTestContainer(t)

	out, err := runCommand(t, c, "login", "-email", "admin@example.org", "-password", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(out, "signed in as Admin <admin@example.org>") {
		t.Errorf("unexpected login output %q", out)
	}

	out, _ = runCommand(t, c, "whoami")
	if strings.TrimSpace(out) != "Admin <admin@example.org> admin" {
		t.Errorf("unexpected whoami output %q", out)
	}

	if _, err := runCommand(t, c, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := runCommand(t, c, "whoami"); err == nil {
		t.Error("expected whoami to need a session after logout")
	}
}

func TestDispatch_Listings(t *testing.T) {
	c, _ := newTestContainer(t)
	if _, err := runCommand(t, c, "login", "-email", "admin@example.org", "-password", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{"hostels", []string{"hostels"}, []string{"Grace Hall", "Mercy Hall"}, nil},
		{"hostels by gender", []string{"hostels", "-gender", "female"}, []string{"Mercy Hall"}, []string{"Grace Hall"}},
		{"unassigned applicants", []string{"applicants", "-unassigned"}, []string{"Ada", "Bayo"}, []string{"Chidi"}},
		{"applicant search", []string{"applicants", "-search", "ada"}, []string{"Ada"}, []string{"Bayo"}},
		{"zones", []string{"zones", "-capacity", "4"}, []string{"North", "50.0%"}, nil},
		{"summary", []string{"summary"}, []string{"applicants", "3"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, c, tt.args...)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("expected %q to be filtered out:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestDispatch_Assign(t *testing.T) {
	c, fake := newTestContainer(t)
	if _, err := runCommand(t, c, "login", "-email", "admin@example.org", "-password", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	_, err := runCommand(t, c, "assign", "-hostel", "2", "-members", "11,12,13,14,15")
	if !allocation.IsCapacityExceeded(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	out, err := runCommand(t, c, "assign", "-hostel", "2", "-members", "11, 12")
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if !strings.Contains(out, "assigned 2 member(s) to hostel 2") {
		t.Errorf("unexpected output %q", out)
	}
	if h, _ := fake.Hostel("2"); h.RemainingCapacity != 2 {
		t.Errorf("expected 2 spots left, got %d", h.RemainingCapacity)
	}
}

func TestDispatch_ExportCSV(t *testing.T) {
	c, _ := newTestContainer(t)
	if _, err := runCommand(t, c, "login", "-email", "admin@example.org", "-password", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "applicants.csv")
	if _, err := runCommand(t, c, "export-csv", "-out", path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected csv file, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "id,name") {
		t.Errorf("expected header and three rows, got %q", data)
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "assign-all") {
		t.Errorf("expected command list in usage, got %q", stderr.String())
	}
}
