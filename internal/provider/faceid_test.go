package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekyc-gateway/internal/platform/config"
	dErrors "ekyc-gateway/pkg/domain-errors"
)

func testConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		BaseURL:     baseURL,
		SecretID:    "test-secret-id",
		SecretKey:   "test-secret-key",
		Region:      "ap-jakarta",
		CheckMode:   "liveness",
		SecureLevel: "4",
		Timeout:     5 * time.Second,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(testConfig(baseURL), slog.Default())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("https://faceid.tencentcloudapi.com")
	cfg.SecretKey = ""

	_, err := NewClient(cfg, slog.Default())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestSignKnownVector(t *testing.T) {
	c := newTestClient(t, "https://faceid.tencentcloudapi.com")
	at := time.Unix(1700000000, 0).UTC()

	auth := c.sign([]byte(`{"SdkToken":"tok-1"}`), at)

	assert.Equal(t,
		"TC3-HMAC-SHA256 Credential=test-secret-id/2023-11-14/faceid/tc3_request"+
			", SignedHeaders=content-type;host"+
			", Signature=c971062b39783b1c62dd90b9c1abe6fe496ae7c12d3c48cdfe12dd96a9a1eec3",
		auth)
}

func TestSignDependsOnPayload(t *testing.T) {
	c := newTestClient(t, "https://faceid.tencentcloudapi.com")
	at := time.Unix(1700000000, 0).UTC()

	a := c.sign([]byte(`{"SdkToken":"tok-1"}`), at)
	b := c.sign([]byte(`{"SdkToken":"tok-2"}`), at)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c.sign([]byte(`{"SdkToken":"tok-1"}`), at))
}

func TestGetToken(t *testing.T) {
	var gotReq struct {
		action  string
		auth    string
		version string
		body    map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq.action = r.Header.Get("X-TC-Action")
		gotReq.auth = r.Header.Get("Authorization")
		gotReq.version = r.Header.Get("X-TC-Version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq.body))

		w.Write([]byte(`{"Response":{"SdkToken":"sdk-tok-1","RequestId":"req-1"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	resp, err := c.GetToken(context.Background(), TokenRequest{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, "sdk-tok-1", resp.SDKToken)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "GetFaceIdTokenIntl", gotReq.action)
	assert.Equal(t, "2018-03-01", gotReq.version)
	assert.Contains(t, gotReq.auth, "TC3-HMAC-SHA256 Credential=test-secret-id/")
	assert.Equal(t, "liveness", gotReq.body["CheckMode"])
	assert.Equal(t, "user-1", gotReq.body["Extra"])
	assert.NotContains(t, gotReq.body, "RedirectUrl")
}

func TestGetTokenProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":{"Error":{"Code":"AuthFailure","Message":"bad credentials"}}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GetToken(context.Background(), TokenRequest{UserID: "user-1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Contains(t, err.Error(), "AuthFailure")
}

func TestGetTokenEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":{"RequestId":"req-1"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GetToken(context.Background(), TokenRequest{UserID: "user-1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestGetResult(t *testing.T) {
	body := `{"Response":{"Result":"0","Description":"Success","RequestId":"req-2",` +
		`"CompareResults":[{"Sim":87.5}]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	res, err := c.GetResult(context.Background(), "sdk-tok-1")
	require.NoError(t, err)

	assert.True(t, res.Passed())
	assert.Equal(t, "Success", res.Description)
	assert.Equal(t, "req-2", res.RequestID)
	require.NotNil(t, res.Similarity)
	assert.InDelta(t, 87.5, *res.Similarity, 1e-9)
	assert.JSONEq(t, body, string(res.Raw))
}

func TestGetResultRequiresToken(t *testing.T) {
	c := newTestClient(t, "https://faceid.tencentcloudapi.com")

	_, err := c.GetResult(context.Background(), "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestGetResultHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GetResult(context.Background(), "sdk-tok-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
