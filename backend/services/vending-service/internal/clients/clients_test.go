package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMoMoClientVerify(t *testing.T) {
	var got verifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/momo/verify" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"successful": true,
			"message":    "Payment successful",
		})
	}))
	defer server.Close()

	client := NewMoMoClient(server.URL, time.Second, zap.NewNop())
	result, err := client.Verify(context.Background(), "+250780000001", 1000, "PAY-abc")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !result.Successful || result.Message != "Payment successful" {
		t.Fatalf("unexpected result %+v", result)
	}
	if got.PhoneNumber != "+250780000001" || got.Amount != 1000 || got.Reference != "PAY-abc" {
		t.Fatalf("unexpected request payload %+v", got)
	}
}

func TestMoMoClientVerifyDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"successful": false,
			"message":    "insufficient funds",
		})
	}))
	defer server.Close()

	client := NewMoMoClient(server.URL, time.Second, zap.NewNop())
	result, err := client.Verify(context.Background(), "+250780000001", 1000, "PAY-abc")
	if err != nil {
		t.Fatalf("a declined charge is not a transport error: %v", err)
	}
	if result.Successful {
		t.Fatalf("expected declined result")
	}
	if result.Message != "insufficient funds" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestMoMoClientVerifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewMoMoClient(server.URL, time.Second, zap.NewNop())
	if _, err := client.Verify(context.Background(), "+250780000001", 1000, "PAY-abc"); err == nil {
		t.Fatalf("expected error on 500 response")
	}
}

func TestMoMoClientVerifyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewMoMoClient(server.URL, time.Second, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.Verify(ctx, "+250780000001", 1000, "PAY-abc"); err == nil {
		t.Fatalf("expected error when the gateway does not answer in time")
	}
}

func TestREGClientLoad(t *testing.T) {
	var got loadRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reg/load" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"successful": true,
			"message":    "Units loaded successfully",
		})
	}))
	defer server.Close()

	client := NewREGClient(server.URL, time.Second, zap.NewNop())
	result, err := client.Load(context.Background(), "MTR-1001", 10)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !result.Successful {
		t.Fatalf("unexpected result %+v", result)
	}
	if got.MeterNumber != "MTR-1001" || got.Units != 10 {
		t.Fatalf("unexpected request payload %+v", got)
	}
}

func TestREGClientLoadUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewREGClient(server.URL, time.Second, zap.NewNop())
	if _, err := client.Load(context.Background(), "MTR-1001", 10); err == nil {
		t.Fatalf("expected error when the gateway is down")
	}
}
