package resourcecache

import (
	"io"
	"os"
	"testing"

	"github.com/goliatone/go-hostel-admin/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
	os.Exit(m.Run())
}
