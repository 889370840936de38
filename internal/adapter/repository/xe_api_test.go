package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xe-rate-service/internal/domain/model"
	"xe-rate-service/pkg/logger"
)

const usdToJpyEur = `{
  "terms": "http://www.xe.com/legal/dfs.php",
  "privacy": "http://www.xe.com/privacy.php",
  "from": "USD",
  "amount": 1.0,
  "timestamp": "2023-01-13T00:00:00Z",
  "to": [
    {"quotecurrency": "JPY", "mid": 129.4587872709},
    {"quotecurrency": "EUR", "mid": "0.9480492061"}
  ]
}`

const jpyToUsd = `{
  "from": "JPY",
  "amount": 1.0,
  "to": [{"quotecurrency": "USD", "mid": 0.0077759754}]
}`

const badCredentials = `{
  "code": 1,
  "message": "Bad credentials",
  "documentation_url": "https://xecdapi.xe.com/docs/v1/"
}`

type recordedRequest struct {
	path     string
	rawQuery string
	user     string
	pass     string
	authOK   bool
}

type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, r)
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.requests...)
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *requestLog) {
	t.Helper()

	requests := &requestLog{}
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		requests.add(recordedRequest{
			path:     r.URL.Path,
			rawQuery: r.URL.RawQuery,
			user:     user,
			pass:     pass,
			authOK:   ok,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, requests
}

func newTestClient(server *httptest.Server) *XEClient {
	return NewXEClient(
		server.URL+"/v1/convert_from.json",
		"fake-id",
		"fake-key",
		5*time.Second,
		logger.NewLogger("error"),
		WithHTTPClient(server.Client()),
	)
}

func TestXEClient_FetchRates(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, usdToJpyEur)
	client := newTestClient(server)

	rates, err := client.FetchRates(context.Background(), model.USD, []model.Currency{model.JPY, model.EUR})
	require.NoError(t, err)

	require.Len(t, rates, 2)
	assert.True(t, decimal.RequireFromString("129.4587872709").Equal(rates[model.JPY]), "got %s", rates[model.JPY])
	assert.True(t, decimal.RequireFromString("0.9480492061").Equal(rates[model.EUR]), "got %s", rates[model.EUR])
	assert.Equal(t, "129.4587872709", rates[model.JPY].String())
	assert.Equal(t, "0.9480492061", rates[model.EUR].String())

	all := requests.all()
	require.Len(t, all, 1)
	req := all[0]
	assert.Equal(t, "/v1/convert_from.json", req.path)
	assert.Equal(t, "from=USD&to=JPY,EUR", req.rawQuery)
	assert.True(t, req.authOK)
	assert.Equal(t, "fake-id", req.user)
	assert.Equal(t, "fake-key", req.pass)
}

func TestXEClient_FetchRate(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, jpyToUsd)
	client := newTestClient(server)

	rate, err := client.FetchRate(context.Background(), model.JPY, model.USD)
	require.NoError(t, err)

	assert.Equal(t, "0.0077759754", rate.String())
	all := requests.all()
	require.Len(t, all, 1)
	assert.Equal(t, "from=JPY&to=USD", all[0].rawQuery)
}

func TestXEClient_ErrorMessagePassthrough(t *testing.T) {
	server, _ := newTestServer(t, http.StatusUnauthorized, badCredentials)
	client := newTestClient(server)

	_, err := client.FetchRate(context.Background(), model.JPY, model.USD)
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", err.Error())

	fe, ok := model.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindStatus, fe.Kind)
	assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)
}

func TestXEClient_ErrorResponseWithoutMessage(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantIsErr error
	}{
		{name: "missing message", body: `{"code": 7}`, wantIsErr: ErrMissingMessage},
		{name: "not json", body: `<html>Service Unavailable</html>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newTestServer(t, http.StatusServiceUnavailable, tc.body)
			client := newTestClient(server)

			_, err := client.FetchRate(context.Background(), model.USD, model.EUR)
			require.Error(t, err)

			_, isFetch := model.AsFetchError(err)
			assert.False(t, isFetch, "undecodable error bodies are not reported as FetchError")
			if tc.wantIsErr != nil {
				assert.ErrorIs(t, err, tc.wantIsErr)
			}
		})
	}
}

func TestXEClient_ParseFailures(t *testing.T) {
	testCases := []struct {
		name string
		body string
		to   []model.Currency
	}{
		{name: "invalid json", body: `{"to": [`, to: []model.Currency{model.EUR}},
		{name: "missing target", body: usdToJpyEur, to: []model.Currency{model.JPY, model.GBP}},
		{name: "missing mid", body: `{"to": [{"quotecurrency": "EUR"}]}`, to: []model.Currency{model.EUR}},
		{name: "non numeric mid", body: `{"to": [{"quotecurrency": "EUR", "mid": "abc"}]}`, to: []model.Currency{model.EUR}},
		{name: "no to field", body: `{"from": "USD"}`, to: []model.Currency{model.EUR}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newTestServer(t, http.StatusOK, tc.body)
			client := newTestClient(server)

			rates, err := client.FetchRates(context.Background(), model.USD, tc.to)
			require.Error(t, err)
			assert.Nil(t, rates)
			assert.Equal(t, "error parsing rates response", err.Error())

			fe, ok := model.AsFetchError(err)
			require.True(t, ok)
			assert.Equal(t, model.KindParse, fe.Kind)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestXEClient_TransportError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, usdToJpyEur)
	client := newTestClient(server)
	server.Close()

	_, err := client.FetchRate(context.Background(), model.USD, model.EUR)
	require.Error(t, err)

	fe, ok := model.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindTransport, fe.Kind)
	assert.NotNil(t, fe.Unwrap())
}

func TestXEClient_NoTargets(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, usdToJpyEur)
	client := newTestClient(server)

	_, err := client.FetchRates(context.Background(), model.USD, nil)
	assert.ErrorIs(t, err, ErrNoTargets)
	assert.Empty(t, requests.all())
}
