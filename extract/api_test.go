package extract

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func newStoreServer(t *testing.T, numStores int, failing map[int]bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path == "/prod/number_stores" {
			fmt.Fprintf(w, `{"number_stores": %v}`, numStores)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/prod/store_details/") {
			var n int
			if _, err := fmt.Sscanf(r.URL.Path, "/prod/store_details/%d", &n); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if failing[n] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{"store_code": "ST-%d", "staff_numbers": "%d", "locality": "Town %d"}`, n, 10+n, n)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

func newTestStoreApi(t *testing.T, baseUrl string) *StoreApi {
	api, err := NewStoreApi(newTestLogger(),
		baseUrl+"/prod/number_stores",
		baseUrl+"/prod/store_details/{store_number}",
		"test-key",
		5*time.Second)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	return api
}

func TestStoreApiCountUnits(t *testing.T) {
	srv := newStoreServer(t, 5, nil)
	defer srv.Close()
	api := newTestStoreApi(t, srv.URL)
	n, err := api.CountUnits()
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if n != 5 {
		t.Fatal("unexpected unit count: ", n)
	}
}

// A failing unit must not abort the fetch; it shows up in the error list
// while every reachable unit still lands in the batch.
func TestStoreApiFetchPaginatedPartialOutage(t *testing.T) {
	srv := newStoreServer(t, 5, map[int]bool{3: true})
	defer srv.Close()
	api := newTestStoreApi(t, srv.URL)
	b, unitErrors := api.FetchPaginated(5)
	if b.NumRows() != 4 {
		t.Fatal("expected 4 rows, got ", b.NumRows())
	}
	if len(unitErrors) != 1 {
		t.Fatal("expected 1 unit error, got ", len(unitErrors))
	}
	if unitErrors[0].Unit != 3 {
		t.Fatal("expected unit 3 to fail, got ", unitErrors[0].Unit)
	}
	for i, want := range []string{"ST-1", "ST-2", "ST-4", "ST-5"} {
		if b.Cell("store_code", i) != want {
			t.Fatal("unexpected store_code at row ", i, ": ", b.Cell("store_code", i))
		}
	}
}

// Units are numbered 1..count; unit 0 must never be requested and the
// count-th unit must be.
func TestStoreApiFetchPaginatedUnitRange(t *testing.T) {
	var mu sync.Mutex
	requested := make(map[int]bool)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var n int
		if _, err := fmt.Sscanf(r.URL.Path, "/prod/store_details/%d", &n); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		requested[n] = true
		mu.Unlock()
		fmt.Fprintf(w, `{"store_code": "ST-%d"}`, n)
	}))
	defer srv.Close()
	api, err := NewStoreApi(newTestLogger(),
		srv.URL+"/prod/number_stores",
		srv.URL+"/prod/store_details/{store_number}",
		"",
		5*time.Second)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	b, unitErrors := api.FetchPaginated(3)
	if len(unitErrors) != 0 {
		t.Fatal("unexpected unit errors: ", unitErrors)
	}
	if b.NumRows() != 3 {
		t.Fatal("unexpected row count: ", b.NumRows())
	}
	if requested[0] {
		t.Fatal("unit 0 was requested")
	}
	for unit := 1; unit <= 3; unit++ {
		if !requested[unit] {
			t.Fatal("unit was never requested: ", unit)
		}
	}
}

func TestStoreApiBadUnitUrl(t *testing.T) {
	if _, err := NewStoreApi(newTestLogger(), "http://x/count", "http://x/unit", "", time.Second); err == nil {
		t.Fatal("expected error for unit URL without placeholder")
	}
}
