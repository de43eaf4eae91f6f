// Package airdrop wraps the remote airdrop service's HTTP endpoints. The
// client is stateless; bearer tokens are supplied per call by the wallet
// pipeline that owns them.
package airdrop

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	errs "github.com/wallet-refbot/internal/errors"
	"github.com/wallet-refbot/internal/types"
)

// The service fronts a browser app and rejects bare clients, so every call
// carries the same header set the web client sends.
var defaultHeaders = map[string]string{
	"accept":             "*/*",
	"accept-language":    "en-US,en;q=0.9",
	"priority":           "u=1, i",
	"sec-ch-ua":          `"Chromium";v="134", "Not:A-Brand";v="24", "Microsoft Edge";v="134"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"sec-fetch-dest":     "empty",
	"sec-fetch-mode":     "cors",
	"sec-fetch-site":     "same-site",
	"Referer":            "https://ai.zoro.org/",
	"Referrer-Policy":    "strict-origin-when-cross-origin",
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the remote airdrop service
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the given service endpoint
func NewClient(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeaders(defaultHeaders)
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	return &Client{http: httpClient}
}

// LoginRequest asks the service for a signable login challenge. No auth.
func (c *Client) LoginRequest(ctx context.Context, address string) (*types.LoginChallenge, error) {
	const op = "login-request"

	var challenge types.LoginChallenge
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"strategy": "ETHEREUM_SIGNATURE",
			"address":  address,
		}).
		SetResult(&challenge).
		Get("/user-auth/wallet/login-request")
	if err != nil {
		return nil, errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return nil, errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return &challenge, nil
}

type loginResponse struct {
	Tokens struct {
		AccessToken string `json:"access_token"`
	} `json:"tokens"`
}

// Login exchanges a signed challenge for an access token. A 409 response
// means the referral code was rejected; callers distinguish it with
// errors.IsConflict.
func (c *Client) Login(ctx context.Context, address, message, token, signature, referralCode string) (string, error) {
	const op = "login"

	var login loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"strategy":  "ETHEREUM_SIGNATURE",
			"address":   address,
			"message":   message,
			"token":     token,
			"signature": signature,
			"inviter":   referralCode,
		}).
		SetResult(&login).
		Get("/user-auth/login")
	if err != nil {
		return "", errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return "", errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}
	if login.Tokens.AccessToken == "" {
		return "", errs.NewServiceError(op, resp.StatusCode(), "response missing access token")
	}

	return login.Tokens.AccessToken, nil
}

// SetNickname assigns a display name to the logged-in account
func (c *Client) SetNickname(ctx context.Context, accessToken, nickname string) error {
	const op = "set-nickname"

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("nickname", nickname).
		Post("/user/set-nickname")
	if err != nil {
		return errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

// ClaimDailyReward claims the daily check-in reward
func (c *Client) ClaimDailyReward(ctx context.Context, accessToken string) error {
	const op = "claim-daily-reward"

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/daily-rewards/claim")
	if err != nil {
		return errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

// ClaimMissionReward claims one of the fixed mission rewards
func (c *Client) ClaimMissionReward(ctx context.Context, accessToken, rewardID string) error {
	op := fmt.Sprintf("claim-mission-reward %s", rewardID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/mission-reward/" + rewardID)
	if err != nil {
		return errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

// CompleteImageMission downloads the mission's fixed image asset and submits
// it as a multipart upload
func (c *Client) CompleteImageMission(ctx context.Context, accessToken string, mission Mission) error {
	op := fmt.Sprintf("image-mission %s", mission.Kind)

	image, err := c.downloadImage(ctx, mission.ImageURL)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetFileReader("image", mission.Kind+".jpg", bytes.NewReader(image)).
		Post("/mission-activity/" + mission.ID)
	if err != nil {
		return errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (c *Client) downloadImage(ctx context.Context, url string) ([]byte, error) {
	const op = "download-mission-image"

	// absolute URL, bypasses the client's base
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return nil, errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return resp.Body(), nil
}

type accountInfoResponse struct {
	User struct {
		Nickname string `json:"nickname"`
	} `json:"user"`
	Balance float64 `json:"balance"`
	Rank    int     `json:"rank"`
}

// AccountInfo fetches the scoreboard snapshot for the logged-in account
func (c *Client) AccountInfo(ctx context.Context, accessToken string) (*types.AccountInfo, error) {
	const op = "account-info"

	var info accountInfoResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&info).
		Get("/scoreboard/me")
	if err != nil {
		return nil, errs.NewNetworkError(op, err)
	}
	if resp.IsError() {
		return nil, errs.NewServiceError(op, resp.StatusCode(), string(resp.Body()))
	}

	return &types.AccountInfo{
		Nickname: info.User.Nickname,
		Balance:  info.Balance,
		Rank:     info.Rank,
	}, nil
}
