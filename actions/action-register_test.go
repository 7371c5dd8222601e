package actions

import (
	"io/ioutil"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/starpipe/starpipe/config"
	"github.com/starpipe/starpipe/constants"
	"github.com/starpipe/starpipe/logger"
)

func TestEntityNames(t *testing.T) {
	names := EntityNames()
	want := []string{"cards", "dates", "orders", "products", "stores", "times", "users"}
	if len(names) != len(want) {
		t.Fatal("unexpected entity names: ", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatal("unexpected entity names: ", names)
		}
	}
}

func TestIngestActionsTargets(t *testing.T) {
	if IngestActions["users"].TargetTable != constants.TableDimUsers {
		t.Fatal("unexpected target for users: ", IngestActions["users"].TargetTable)
	}
	// Both cleanings of the date-details dataset land in the same dimension.
	if IngestActions["times"].TargetTable != IngestActions["dates"].TargetTable {
		t.Fatal("expected times and dates to share a target table")
	}
	for name, action := range IngestActions {
		if action.Fn == nil || action.TargetTable == "" || action.Description == "" {
			t.Fatal("incomplete action registration for ", name)
		}
	}
}

// A connection configured with the wrong type is rejected before any
// network work starts.
func TestIngestStoresRejectsWrongConnectionType(t *testing.T) {
	dir, err := ioutil.TempDir("", "starpipe-actions")
	if err != nil {
		t.Fatal("unable to create temp dir: ", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	yaml := `
stores_api:
  type: postgres
  data:
    count_url: https://api.example.com/number_stores
    unit_url: https://api.example.com/store_details/{store_number}
`
	if err := ioutil.WriteFile(path.Join(dir, config.ConnectionsFileFullName), []byte(yaml), 0600); err != nil {
		t.Fatal("unable to write test config: ", err)
	}
	cfg := &IngestConfig{
		Log:         logger.NewLogger("starpipe", "error", false),
		Connections: config.NewConfigFileWithDir(dir, config.ConnectionsFileFullName),
	}
	err = RunIngestAction("stores", cfg)
	if err == nil {
		t.Fatal("expected error for wrong connection type")
	}
	if !strings.Contains(err.Error(), constants.ConnectionTypeApi) {
		t.Fatal("unexpected error text: ", err.Error())
	}
}

func TestRunIngestActionUnknownEntity(t *testing.T) {
	cfg := &IngestConfig{Log: logger.NewLogger("starpipe", "error", false)}
	err := RunIngestAction("basket", cfg)
	if err == nil {
		t.Fatal("expected error for unknown entity")
	}
	if !strings.Contains(err.Error(), "basket") {
		t.Fatal("unexpected error text: ", err.Error())
	}
}
