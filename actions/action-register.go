// Package actions holds the end-to-end ingestion actions behind the CLI.
// Each action extracts one retail dataset, runs its cleaning pipeline and
// persists the result to the warehouse.
package actions

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/config"
	"github.com/starpipe/starpipe/constants"
	"github.com/starpipe/starpipe/load"
	"github.com/starpipe/starpipe/logger"
	"github.com/starpipe/starpipe/stats"
)

// IngestConfig carries everything an ingestion action needs.
type IngestConfig struct {
	Log           logger.Logger
	Connections   *config.File
	WriteMode     load.Mode
	StrictWeights bool               // abort on unrecognised weight grammars instead of nulling them.
	OnEvent       stats.EventHandler // optional receiver of per-rule progress events.
}

// IngestAction is one registered entity ingestion.
type IngestAction struct {
	Description string
	TargetTable string
	Fn          func(cfg *IngestConfig) error
}

// IngestActions maps entity names to their actions.
var IngestActions = map[string]IngestAction{
	"users": {
		Description: "load the legacy users table into dim_users",
		TargetTable: constants.TableDimUsers,
		Fn:          ingestUsers,
	},
	"cards": {
		Description: "load card details from the card PDF into dim_card_details",
		TargetTable: constants.TableDimCardDetails,
		Fn:          ingestCards,
	},
	"stores": {
		Description: "load store details from the stores API into dim_store_details",
		TargetTable: constants.TableDimStoreDetails,
		Fn:          ingestStores,
	},
	"products": {
		Description: "load the products CSV from S3 into dim_products",
		TargetTable: constants.TableDimProducts,
		Fn:          ingestProducts,
	},
	"orders": {
		Description: "load the orders fact table into orders_table",
		TargetTable: constants.TableOrders,
		Fn:          ingestOrders,
	},
	"times": {
		Description: "load the date-details document into dim_date_times, dropping incomplete rows",
		TargetTable: constants.TableDimDateTimes,
		Fn:          ingestTimes,
	},
	"dates": {
		Description: "load the date-details document into dim_date_times, keeping incomplete rows as nulls",
		TargetTable: constants.TableDimDateTimes,
		Fn:          ingestDates,
	},
}

// EntityNames returns the registered entity names in stable order.
func EntityNames() []string {
	names := make([]string, 0, len(IngestActions))
	for name := range IngestActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunIngestAction executes the named action.
func RunIngestAction(name string, cfg *IngestConfig) error {
	action, ok := IngestActions[name]
	if !ok {
		return errors.Errorf("unknown entity %q: expected one of %v", name, EntityNames())
	}
	cfg.Log.Info("ingesting entity ", name, " into table ", action.TargetTable)
	return action.Fn(cfg)
}
