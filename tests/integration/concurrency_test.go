package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postJSON is a goroutine-safe request helper. It never touches testing.T so
// workers can report through channels instead of failing from the wrong
// goroutine.
func postJSON(client *http.Client, url string, headers map[string]string, body interface{}) (int, map[string]interface{}, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	envelope := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, envelope, nil
}

func TestConcurrency_DepositsSumExactly(t *testing.T) {
	app := newTestApp(t)
	accountID := app.seedAccount(t, "depositor", 0)
	client := app.server.Client()
	url := app.server.URL + "/api/v1/balance/deposit"
	headers := playerHeaders(accountID)

	const workers = 50
	const amount = 1000

	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, err := postJSON(client, url, headers, map[string]interface{}{"amount": amount})
			if err != nil {
				statuses <- 0
				return
			}
			statuses <- status
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusCreated, status)
	}

	status, envelope := app.do(t, http.MethodGet, "/api/v1/balance", headers, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, workers*amount, dataMap(t, envelope)["balance"])

	// One ledger entry per deposit, none lost or duplicated.
	status, envelope = app.do(t, http.MethodGet, "/api/v1/transactions?limit=100", headers, nil)
	require.Equal(t, http.StatusOK, status)
	items := dataMap(t, envelope)["items"].([]interface{})
	assert.Len(t, items, workers)
}

func TestConcurrency_DebitGuardNeverOverdraws(t *testing.T) {
	app := newTestApp(t)
	accountID := app.seedAccount(t, "spender", 1000)
	productID := app.seedProduct(t, "Potion", 300)
	client := app.server.Client()
	url := app.server.URL + "/api/v1/checkout"
	headers := playerHeaders(accountID)

	const workers = 10

	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			status, _, err := postJSON(client, url, headers, map[string]interface{}{
				"items":           []map[string]interface{}{{"product_id": productID, "quantity": 1}},
				"idempotency_key": fmt.Sprintf("race-%d", n),
			})
			if err != nil {
				statuses <- 0
				return
			}
			statuses <- status
		}(i)
	}
	wg.Wait()
	close(statuses)

	var successes int
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			successes++
		case http.StatusConflict:
			// Insufficient funds once the balance ran out.
		default:
			t.Errorf("unexpected status %d", status)
		}
	}

	// 1000 covers at most three 300 debits; the guard must stop the rest.
	assert.LessOrEqual(t, successes, 3)
	assert.Positive(t, successes)

	status, envelope := app.do(t, http.MethodGet, "/api/v1/balance", headers, nil)
	require.Equal(t, http.StatusOK, status)
	balance := dataMap(t, envelope)["balance"].(float64)
	assert.EqualValues(t, 1000-300*successes, balance)
	assert.GreaterOrEqual(t, balance, float64(0))
}

func TestConcurrency_SameIdempotencyKeySingleDebit(t *testing.T) {
	app := newTestApp(t)
	accountID := app.seedAccount(t, "replayer", 100000)
	productID := app.seedProduct(t, "Flaming Sword", 20000)
	client := app.server.Client()
	url := app.server.URL + "/api/v1/checkout"
	headers := playerHeaders(accountID)

	const workers = 10

	type result struct {
		status  int
		orderID float64
	}
	results := make(chan result, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, envelope, err := postJSON(client, url, headers, map[string]interface{}{
				"items":           []map[string]interface{}{{"product_id": productID, "quantity": 1}},
				"idempotency_key": "shared-key-1",
			})
			if err != nil {
				results <- result{status: 0}
				return
			}
			r := result{status: status}
			if data, ok := envelope["data"].(map[string]interface{}); ok {
				if id, ok := data["id"].(float64); ok {
					r.orderID = id
				}
			}
			results <- r
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	orderIDs := map[float64]bool{}
	for r := range results {
		switch r.status {
		case http.StatusCreated:
			successes++
			orderIDs[r.orderID] = true
		case http.StatusConflict:
			// A racing duplicate was rolled back and asked to retry.
		default:
			t.Errorf("unexpected status %d", r.status)
		}
	}

	// Every winner saw the same order, and exactly one debit landed.
	require.Positive(t, successes)
	assert.Len(t, orderIDs, 1)

	status, envelope := app.do(t, http.MethodGet, "/api/v1/balance", headers, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 80000, dataMap(t, envelope)["balance"])

	status, envelope = app.do(t, http.MethodGet, "/api/v1/transactions?limit=100", headers, nil)
	require.Equal(t, http.StatusOK, status)
	items := dataMap(t, envelope)["items"].([]interface{})
	var debits int
	for _, it := range items {
		if it.(map[string]interface{})["kind"] == "purchase_debit" {
			debits++
		}
	}
	assert.Equal(t, 1, debits)
}
