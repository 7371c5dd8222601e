package actions

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/clean"
	"github.com/starpipe/starpipe/constants"
	"github.com/starpipe/starpipe/extract"
	"github.com/starpipe/starpipe/load"
	"github.com/starpipe/starpipe/rdbms"
	"github.com/starpipe/starpipe/stats"
)

func ingestUsers(cfg *IngestConfig) error {
	b, err := fetchSourceTable(cfg, constants.TableLegacyUsers)
	if err != nil {
		return err
	}
	if err := runPipeline(cfg, clean.UserPipeline(), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableDimUsers)
}

func ingestCards(cfg *IngestConfig) error {
	locator, err := connectionValue(cfg, constants.ConnectionCardsPdf, "url")
	if err != nil {
		return err
	}
	b, err := extract.FetchPdfTables(cfg.Log, locator)
	if err != nil {
		return err
	}
	if err := runPipeline(cfg, clean.CardPipeline(), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableDimCardDetails)
}

func ingestStores(cfg *IngestConfig) error {
	if err := requireConnectionType(cfg, constants.ConnectionStoresApi, constants.ConnectionTypeApi); err != nil {
		return err
	}
	conn, err := cfg.Connections.GetConnectionDetails(constants.ConnectionStoresApi)
	if err != nil {
		return err
	}
	countUrl, err := dataValue(conn, "count_url")
	if err != nil {
		return err
	}
	unitUrl, err := dataValue(conn, "unit_url")
	if err != nil {
		return err
	}
	timeout := time.Duration(constants.DefaultHttpTimeoutSec) * time.Second
	if s := conn.Data["timeout_sec"]; s != "" {
		secs, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "connection %q has a bad timeout_sec", conn.LogicalName)
		}
		timeout = time.Duration(secs) * time.Second
	}
	api, err := extract.NewStoreApi(cfg.Log, countUrl, unitUrl, conn.Data["api_key"], timeout)
	if err != nil {
		return err
	}
	numUnits, err := api.CountUnits()
	if err != nil {
		return err
	}
	b, unitErrors := api.FetchPaginated(numUnits)
	for _, ue := range unitErrors { // failed units are reported, not fatal...
		cfg.Log.Warn("store unit skipped: ", ue.Error())
	}
	if err := runPipeline(cfg, clean.StorePipeline(), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableDimStoreDetails)
}

func ingestProducts(cfg *IngestConfig) error {
	if err := requireConnectionType(cfg, constants.ConnectionProductsS3, constants.ConnectionTypeS3); err != nil {
		return err
	}
	conn, err := cfg.Connections.GetConnectionDetails(constants.ConnectionProductsS3)
	if err != nil {
		return err
	}
	address, err := dataValue(conn, "address")
	if err != nil {
		return err
	}
	region, err := dataValue(conn, "region")
	if err != nil {
		return err
	}
	b, err := extract.FetchS3Csv(cfg.Log, nil, address, region)
	if err != nil {
		return err
	}
	if err := runPipeline(cfg, clean.ProductPipeline(cfg.StrictWeights), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableDimProducts)
}

func ingestOrders(cfg *IngestConfig) error {
	b, err := fetchSourceTable(cfg, constants.TableOrders)
	if err != nil {
		return err
	}
	if err := runPipeline(cfg, clean.OrdersPipeline(), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableOrders)
}

func ingestTimes(cfg *IngestConfig) error {
	b, err := fetchDateDetails(cfg)
	if err != nil {
		return err
	}
	if err := runPipeline(cfg, clean.OrderTimePipeline(), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableDimDateTimes)
}

func ingestDates(cfg *IngestConfig) error {
	b, err := fetchDateDetails(cfg)
	if err != nil {
		return err
	}
	if err := runPipeline(cfg, clean.DateTimesPipeline(), b); err != nil {
		return err
	}
	return persist(cfg, b, constants.TableDimDateTimes)
}

// fetchSourceTable reads one table from the source database.
func fetchSourceTable(cfg *IngestConfig, table string) (*batch.Batch, error) {
	conn, err := openConnector(cfg, constants.ConnectionSourceDb)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.FetchTable(table)
}

func fetchDateDetails(cfg *IngestConfig) (*batch.Batch, error) {
	url, err := connectionValue(cfg, constants.ConnectionDateDetails, "url")
	if err != nil {
		return nil, err
	}
	return extract.FetchJsonDocument(cfg.Log, nil, url)
}

// runPipeline applies p to b with a fresh run watcher.
func runPipeline(cfg *IngestConfig, p clean.Pipeline, b *batch.Batch) error {
	watcher := stats.NewRunWatcher(cfg.Log, p.Name)
	if cfg.OnEvent != nil {
		watcher.OnEvent(cfg.OnEvent)
	}
	return clean.NewEngine(cfg.Log, watcher).Run(p, b)
}

// persist writes b to the named warehouse table on the target database.
func persist(cfg *IngestConfig, b *batch.Batch, table string) error {
	conn, err := openConnector(cfg, constants.ConnectionTargetDb)
	if err != nil {
		return err
	}
	defer conn.Close()
	return load.NewTableWriter(cfg.Log, conn).Persist(b, table, cfg.WriteMode)
}

func openConnector(cfg *IngestConfig, connectionName string) (*rdbms.Connector, error) {
	details, err := cfg.Connections.GetConnectionDetails(connectionName)
	if err != nil {
		return nil, err
	}
	return rdbms.NewPostgresConnector(cfg.Log, details)
}

// requireConnectionType rejects a connection configured with the wrong type
// before any network work starts.
func requireConnectionType(cfg *IngestConfig, connectionName string, wantType string) error {
	ct, err := cfg.Connections.GetConnectionType(connectionName)
	if err != nil {
		return err
	}
	if ct != wantType {
		return errors.Errorf("connection %q must be of type %v, got %q", connectionName, wantType, ct)
	}
	return nil
}

// connectionValue fetches one data key from a named connection.
func connectionValue(cfg *IngestConfig, connectionName string, key string) (string, error) {
	conn, err := cfg.Connections.GetConnectionDetails(connectionName)
	if err != nil {
		return "", err
	}
	return dataValue(conn, key)
}

func dataValue(conn *rdbms.ConnectionDetails, key string) (string, error) {
	v := conn.Data[key]
	if v == "" {
		return "", errors.Errorf("connection %q is missing required value %q", conn.LogicalName, key)
	}
	return v, nil
}
