package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/helper"
	"github.com/starpipe/starpipe/logger"
)

const unitPlaceholder = "{store_number}"

// StoreApi fetches store records one unit at a time from a REST endpoint.
type StoreApi struct {
	log      logger.Logger
	client   *resty.Client
	countUrl string
	unitUrl  string
}

// NewStoreApi builds a store API acquirer. The unit URL must contain the
// {store_number} placeholder. An apiKey, when set, is sent as the x-api-key
// header on every request.
func NewStoreApi(log logger.Logger, countUrl, unitUrl, apiKey string, timeout time.Duration) (*StoreApi, error) {
	if !strings.Contains(unitUrl, unitPlaceholder) {
		return nil, errors.Errorf("unit URL %q is missing the %v placeholder", unitUrl, unitPlaceholder)
	}
	client := resty.New().SetTimeout(timeout)
	if apiKey != "" {
		client.SetHeader("x-api-key", apiKey)
	}
	return &StoreApi{
		log:      log,
		client:   client,
		countUrl: countUrl,
		unitUrl:  unitUrl,
	}, nil
}

// CountUnits asks the service how many units are available.
func (a *StoreApi) CountUnits() (int, error) {
	var body struct {
		NumberStores *int `json:"number_stores"`
	}
	resp, err := a.client.R().SetResult(&body).Get(a.countUrl)
	if err != nil {
		return 0, SourceUnavailableError{Locator: a.countUrl, Err: err}
	}
	if resp.IsError() {
		return 0, SourceUnavailableError{Locator: a.countUrl, Err: fmt.Errorf("HTTP status %v", resp.StatusCode())}
	}
	if body.NumberStores == nil {
		return 0, SourceUnavailableError{Locator: a.countUrl, Err: errors.New("response is missing number_stores")}
	}
	return *body.NumberStores, nil
}

// FetchPaginated fetches units 1..numUnits and assembles the successful
// responses into one batch. A failing unit is recorded in the returned error
// list and never aborts the remaining units, so a partial outage still
// yields every reachable row.
func (a *StoreApi) FetchPaginated(numUnits int) (*batch.Batch, []UnitError) {
	unitErrors := make([]UnitError, 0)
	records := make([]map[string]interface{}, 0, numUnits)
	for unit := 1; unit <= numUnits; unit++ {
		rec, err := a.fetchUnit(unit)
		if err != nil {
			a.log.Warn("unit ", unit, " failed: ", err)
			unitErrors = append(unitErrors, UnitError{Unit: unit, Err: err})
			continue
		}
		records = append(records, rec)
	}
	b, err := recordsToBatch(records)
	if err != nil { // duplicate column name, cannot happen with map keys.
		a.log.Panic("error assembling paginated batch: ", err)
	}
	a.log.Info("fetched ", b.NumRows(), " of ", numUnits, " units (", len(unitErrors), " failed)")
	return b, unitErrors
}

func (a *StoreApi) fetchUnit(unit int) (map[string]interface{}, error) {
	url := strings.Replace(a.unitUrl, unitPlaceholder, helper.ValueToString(unit), 1)
	var rec map[string]interface{}
	resp, err := a.client.R().SetResult(&rec).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP status %v", resp.StatusCode())
	}
	if rec == nil {
		return nil, errors.New("empty response body")
	}
	return rec, nil
}
