package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_shipping_v1/internal/api/dto"
)

func TestQuoteClient_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/shipping/quotes", r.URL.Path)

		var req dto.QuoteReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "11527", req.PostalCode)
		require.Len(t, req.Lines, 1)
		assert.True(t, decimal.RequireFromString("12.50").Equal(req.Lines[0].UnitPrice))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.QuoteResp{
			QuoteID: "q-1",
			ZoneID:  1,
			Producers: []dto.ProducerQuoteResp{{
				ProducerID: 3,
				Options:    []dto.ShippingOptionResp{{Code: "courier", Cost: "4.00"}},
			}},
			CODCost: "0.00",
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/"})
	resp, err := c.Quote(context.Background(), dto.QuoteReq{
		PostalCode: "11527",
		Lines: []dto.QuoteLineReq{{
			ProducerID: 3, Quantity: 1, UnitWeightGrams: 500, UnitPrice: decimal.RequireFromString("12.50"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", resp.QuoteID)
	require.Len(t, resp.Producers, 1)
	assert.Equal(t, "4.00", resp.Producers[0].Options[0].Cost)
}

func TestQuoteClient_ResolveZone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "84 100", r.URL.Query().Get("postal_code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"postal_code":"84 100","normalized":"84100","zone_id":2}`))
	}))
	defer srv.Close()

	resp, err := New(Options{BaseURL: srv.URL}).ResolveZone(context.Background(), "84 100")
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.ZoneID)
	assert.Equal(t, "84100", resp.Normalized)
}

func TestQuoteClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"购物车为空","kind":"invalid_input"}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Quote(context.Background(), dto.QuoteReq{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_input", apiErr.Kind)
	assert.Equal(t, "购物车为空", apiErr.Message)
}

func TestQuoteClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"busy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"postal_code":"1","normalized":"1","zone_id":1}`))
	}))
	defer srv.Close()

	resp, err := New(Options{BaseURL: srv.URL, RetryCount: 3}).ResolveZone(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ZoneID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQuoteClient_SendsOperatorToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"未提供认证信息"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"categories":["rates"]}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).FlushCache(context.Background(), dto.FlushCacheReq{Categories: []string{"rates"}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	resp, err := New(Options{BaseURL: srv.URL, Token: "tok-1"}).FlushCache(context.Background(), dto.FlushCacheReq{Categories: []string{"rates"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"rates"}, resp.Categories)
}
