package channel

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/ValentinKolb/dDocs/rpc/serializer"
	"github.com/ValentinKolb/dDocs/rpc/server"
)

// newTestChannel mounts the in-memory server on an httptest server and opens
// a channel against it
func newTestChannel(t *testing.T, serverConfig common.ServerConfig, clientConfig common.ClientConfig, ser serializer.IRPCSerializer) IRequestChannel {
	t.Helper()

	ts := httptest.NewServer(server.NewServer(serverConfig).Handler())
	t.Cleanup(ts.Close)

	clientConfig.URL = ts.URL
	ch, err := NewHTTPChannel(clientConfig, "north", common.DefaultConventions(), ser)
	if err != nil {
		t.Fatalf("NewHTTPChannel() failed: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

// TestHTTPChannelRoundTrip tests document operations end to end for every
// wire format
func TestHTTPChannelRoundTrip(t *testing.T) {
	serializers := map[string]serializer.IRPCSerializer{
		"JSON":   serializer.NewJSONSerializer(),
		"GOB":    serializer.NewGOBSerializer(),
		"Binary": serializer.NewBinarySerializer(),
	}

	for name, ser := range serializers {
		t.Run(name, func(t *testing.T) {
			ch := newTestChannel(t, common.ServerConfig{}, common.ClientConfig{TimeoutSecond: 5}, ser)
			ctx := context.Background()

			if _, err := ch.Execute(ctx, common.NewPutRequest("orders/1", "orders", []byte(`{"product":"keyboard"}`))); err != nil {
				t.Fatalf("put failed: %v", err)
			}

			resp, err := ch.Execute(ctx, common.NewGetRequest("orders/1"))
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if !resp.Ok || string(resp.Document) != `{"product":"keyboard"}` {
				t.Errorf("get = ok=%v document=%s", resp.Ok, resp.Document)
			}

			resp, err = ch.Execute(ctx, common.NewHasRequest("orders/1"))
			if err != nil {
				t.Fatalf("has failed: %v", err)
			}
			if !resp.Ok {
				t.Errorf("has = false, want true")
			}

			resp, err = ch.Execute(ctx, common.NewDeleteRequest("orders/1"))
			if err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if !resp.Ok {
				t.Errorf("delete = false, want true")
			}

			resp, err = ch.Execute(ctx, common.NewGetRequest("orders/1"))
			if err != nil {
				t.Fatalf("get after delete failed: %v", err)
			}
			if resp.Ok {
				t.Errorf("get after delete = true, want false")
			}
		})
	}
}

// TestHTTPChannelHiLo tests identifier range reservation over the wire
func TestHTTPChannelHiLo(t *testing.T) {
	ch := newTestChannel(t, common.ServerConfig{HiLoCapacity: 10}, common.ClientConfig{TimeoutSecond: 5}, serializer.NewJSONSerializer())
	ctx := context.Background()

	resp, err := ch.Execute(ctx, common.NewHiLoNextRequest("orders", 10))
	if err != nil {
		t.Fatalf("hilo next failed: %v", err)
	}
	if resp.Lo != 1 || resp.Hi != 10 {
		t.Errorf("first range = [%d, %d], want [1, 10]", resp.Lo, resp.Hi)
	}

	resp, err = ch.Execute(ctx, common.NewHiLoNextRequest("orders", 10))
	if err != nil {
		t.Fatalf("hilo next failed: %v", err)
	}
	if resp.Lo != 11 || resp.Hi != 20 {
		t.Errorf("second range = [%d, %d], want [11, 20]", resp.Lo, resp.Hi)
	}

	// Return the tail of the most recent range, the next reservation reuses it
	resp, err = ch.Execute(ctx, common.NewHiLoReturnRequest("orders", 12, 20))
	if err != nil {
		t.Fatalf("hilo return failed: %v", err)
	}
	if !resp.Ok {
		t.Errorf("hilo return = false, want true")
	}

	resp, err = ch.Execute(ctx, common.NewHiLoNextRequest("orders", 10))
	if err != nil {
		t.Fatalf("hilo next failed: %v", err)
	}
	if resp.Lo != 13 {
		t.Errorf("range after return starts at %d, want 13", resp.Lo)
	}
}

// TestHTTPChannelMaintenance tests stats and ping
func TestHTTPChannelMaintenance(t *testing.T) {
	ch := newTestChannel(t, common.ServerConfig{}, common.ClientConfig{TimeoutSecond: 5}, serializer.NewJSONSerializer())
	ctx := context.Background()

	if _, err := ch.Execute(ctx, common.NewPingRequest()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	if _, err := ch.Execute(ctx, common.NewPutRequest("orders/1", "orders", []byte(`{}`))); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	resp, err := ch.Execute(ctx, common.NewStatsRequest())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if string(resp.Meta) != `{"documents":1}` {
		t.Errorf("stats meta = %s, want {\"documents\":1}", resp.Meta)
	}
}

// TestHTTPChannelCredential tests the access token check
func TestHTTPChannelCredential(t *testing.T) {
	serverConfig := common.ServerConfig{Credential: "secret"}

	t.Run("Missing credential", func(t *testing.T) {
		ch := newTestChannel(t, serverConfig, common.ClientConfig{TimeoutSecond: 5}, serializer.NewJSONSerializer())
		if _, err := ch.Execute(context.Background(), common.NewPingRequest()); err == nil {
			t.Errorf("Execute() succeeded without credential, want error")
		}
	})

	t.Run("Valid credential", func(t *testing.T) {
		ch := newTestChannel(t, serverConfig, common.ClientConfig{TimeoutSecond: 5, Credential: "secret"}, serializer.NewJSONSerializer())
		if _, err := ch.Execute(context.Background(), common.NewPingRequest()); err != nil {
			t.Errorf("Execute() with credential failed: %v", err)
		}
	})
}

// TestHTTPChannelErrorResponse tests that protocol errors surface as Go errors
func TestHTTPChannelErrorResponse(t *testing.T) {
	ch := newTestChannel(t, common.ServerConfig{}, common.ClientConfig{TimeoutSecond: 5}, serializer.NewJSONSerializer())

	if _, err := ch.Execute(context.Background(), &common.Message{MsgType: common.MsgTSuccess}); err == nil {
		t.Errorf("Execute() of an unsupported message succeeded, want error")
	}
}

// TestNewHTTPChannelValidation tests the constructor guards
func TestNewHTTPChannelValidation(t *testing.T) {
	if _, err := NewHTTPChannel(common.ClientConfig{URL: "http://localhost"}, "", common.DefaultConventions(), serializer.NewJSONSerializer()); err == nil {
		t.Errorf("NewHTTPChannel() with empty database succeeded, want error")
	}
	if _, err := NewHTTPChannel(common.ClientConfig{URL: "http://invalid url\x7f"}, "north", common.DefaultConventions(), serializer.NewJSONSerializer()); err == nil {
		t.Errorf("NewHTTPChannel() with invalid url succeeded, want error")
	}
}
