package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"ekyc-gateway/internal/platform/config"
	dErrors "ekyc-gateway/pkg/domain-errors"
)

const (
	apiVersion     = "2018-03-01"
	actionGetToken = "GetFaceIdTokenIntl"
	actionGetRes   = "GetFaceIdResultIntl"
	serviceName    = "faceid"
)

// Client is the HTTP implementation of FaceID against the Tencent Cloud
// international FaceID API.
type Client struct {
	http   *resty.Client
	cfg    config.ProviderConfig
	host   string
	logger *slog.Logger

	// now is injectable so request signing is testable.
	now func() time.Time
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.ProviderConfig, logger *slog.Logger) (*Client, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "provider credentials are not configured")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider endpoint: %w", err)
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		cfg:    cfg,
		host:   u.Host,
		logger: logger,
		now:    time.Now,
	}, nil
}

// apiError is the error object inside the provider response envelope.
type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type tokenEnvelope struct {
	Response struct {
		SdkToken  string    `json:"SdkToken"`
		RequestId string    `json:"RequestId"`
		Error     *apiError `json:"Error"`
	} `json:"Response"`
}

type resultEnvelope struct {
	Response struct {
		Result      string    `json:"Result"`
		Description string    `json:"Description"`
		Extra       string    `json:"Extra"`
		RequestId   string    `json:"RequestId"`
		Error       *apiError `json:"Error"`

		CompareResults []struct {
			Sim *float64 `json:"Sim"`
		} `json:"CompareResults"`
	} `json:"Response"`
}

// GetToken requests a new SDK token for a verification session.
func (c *Client) GetToken(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	body := map[string]any{
		"CheckMode":   c.cfg.CheckMode,
		"SecureLevel": c.cfg.SecureLevel,
		"Extra":       req.UserID,
	}
	if req.RedirectURL != "" {
		body["RedirectUrl"] = req.RedirectURL
	}

	raw, err := c.call(ctx, actionGetToken, body)
	if err != nil {
		return TokenResponse{}, err
	}

	var env tokenEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return TokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if env.Response.Error != nil {
		return TokenResponse{}, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("provider rejected token request: %s: %s",
				env.Response.Error.Code, env.Response.Error.Message))
	}
	if env.Response.SdkToken == "" {
		return TokenResponse{}, dErrors.New(dErrors.CodeUnavailable, "provider returned an empty token")
	}

	return TokenResponse{
		SDKToken:  env.Response.SdkToken,
		RequestID: env.Response.RequestId,
	}, nil
}

// GetResult fetches the verdict for a finished session. The raw body is
// preserved on the result for persistence.
func (c *Client) GetResult(ctx context.Context, sdkToken string) (VerificationResult, error) {
	if sdkToken == "" {
		return VerificationResult{}, dErrors.New(dErrors.CodeValidation, "sdk token is required")
	}

	raw, err := c.call(ctx, actionGetRes, map[string]any{"SdkToken": sdkToken})
	if err != nil {
		return VerificationResult{}, err
	}

	var env resultEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return VerificationResult{}, fmt.Errorf("decode result response: %w", err)
	}
	if env.Response.Error != nil {
		return VerificationResult{}, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("provider rejected result request: %s: %s",
				env.Response.Error.Code, env.Response.Error.Message))
	}

	res := VerificationResult{
		Result:      env.Response.Result,
		Description: env.Response.Description,
		RequestID:   env.Response.RequestId,
		Extra:       env.Response.Extra,
		Raw:         raw,
	}
	if len(env.Response.CompareResults) > 0 {
		res.Similarity = env.Response.CompareResults[0].Sim
	}
	return res, nil
}

// call signs and executes one provider API action, returning the raw body.
func (c *Client) call(ctx context.Context, action string, body map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", action, err)
	}

	now := c.now().UTC()
	auth := c.sign(payload, now)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Host", c.host).
		SetHeader("X-TC-Action", action).
		SetHeader("X-TC-Version", apiVersion).
		SetHeader("X-TC-Region", c.cfg.Region).
		SetHeader("X-TC-Timestamp", strconv.FormatInt(now.Unix(), 10)).
		SetHeader("Authorization", auth).
		SetBody(payload).
		Post("/")
	if err != nil {
		c.logger.Error("provider request failed", "action", action, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification provider unreachable")
	}
	if resp.IsError() {
		c.logger.Error("provider returned error status",
			"action", action, "status", resp.StatusCode())
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("verification provider returned status %d", resp.StatusCode()))
	}

	return resp.Body(), nil
}

// sign produces the TC3-HMAC-SHA256 Authorization header for a request body.
func (c *Client) sign(payload []byte, now time.Time) string {
	date := now.Format("2006-01-02")

	hashedPayload := sha256Hex(payload)
	canonicalHeaders := "content-type:application/json\nhost:" + c.host + "\n"
	signedHeaders := "content-type;host"
	canonicalRequest := "POST\n/\n\n" + canonicalHeaders + "\n" + signedHeaders + "\n" + hashedPayload

	scope := date + "/" + serviceName + "/tc3_request"
	stringToSign := "TC3-HMAC-SHA256\n" +
		strconv.FormatInt(now.Unix(), 10) + "\n" +
		scope + "\n" +
		sha256Hex([]byte(canonicalRequest))

	secretDate := hmacSHA256([]byte("TC3"+c.cfg.SecretKey), date)
	secretService := hmacSHA256(secretDate, serviceName)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	return "TC3-HMAC-SHA256 Credential=" + c.cfg.SecretID + "/" + scope +
		", SignedHeaders=" + signedHeaders +
		", Signature=" + signature
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}
