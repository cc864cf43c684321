package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pitidev/workhub/internal/client/credstore"
)

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// refreshAndReplay handles a first 401 for next (already marked as retried).
// Without a stored refresh token the credentials are cleared and the original
// 401 is returned. Otherwise the access token is refreshed and next is sent
// again through Do, where its retried flag stops any further refresh.
func (c *Client) refreshAndReplay(ctx context.Context, next *Request, unauthorized *Response) (*Response, error) {
	refreshToken, err := credstore.Lookup(c.store, credstore.KeyRefreshToken)
	if err != nil {
		c.logger.Warn("Failed to read refresh token", "error", err)
		refreshToken = ""
	}

	if refreshToken == "" {
		c.logger.Info("Access token rejected and no refresh token stored, clearing credentials",
			"method", next.Method,
			"path", next.Path)
		c.clearCredentials()
		return nil, c.httpError(next, unauthorized)
	}

	token, err := c.refreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Retrying request with refreshed token",
		"method", next.Method,
		"path", next.Path)
	return c.Do(ctx, next.WithHeader("Authorization", "Bearer "+token))
}

// refreshAccessToken returns a new access token, sharing one refresh call
// between concurrent callers when single-flight is enabled.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if !c.singleFlight {
		return c.refreshOnce(ctx, refreshToken)
	}

	// The shared call must not die with whichever caller happened to start it
	ch := c.refreshGroup.DoChan(refreshToken, func() (interface{}, error) {
		return c.refreshOnce(context.WithoutCancel(ctx), refreshToken)
	})

	select {
	case <-ctx.Done():
		return "", &NetworkError{Method: http.MethodPost, URL: c.baseURL + RefreshPath, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("Joined in-flight token refresh")
		}
		return res.Val.(string), nil
	}
}

// refreshOnce exchanges refreshToken for a new access token and stores it.
// On failure both tokens are cleared, the redirector is signalled and a
// *RefreshError is returned.
func (c *Client) refreshOnce(ctx context.Context, refreshToken string) (string, error) {
	c.logger.Info("Access token rejected, attempting refresh")

	token, err := c.exchangeRefreshToken(ctx, refreshToken)
	if err == nil {
		if setErr := c.store.Set(credstore.KeyToken, token); setErr != nil {
			err = fmt.Errorf("failed to store refreshed access token: %w", setErr)
		}
	}

	if err != nil {
		c.logger.Warn("Token refresh failed, clearing credentials", "error", err)
		c.clearCredentials()

		refreshErr := &RefreshError{Err: err, RedirectToLogin: true}
		c.redirector.RedirectToLogin(refreshErr)
		return "", refreshErr
	}

	c.logger.Info("Successfully refreshed access token")
	return token, nil
}

// exchangeRefreshToken posts the refresh token without credential attachment
// or refresh handling of its own.
func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	req, err := NewRequest(http.MethodPost, RefreshPath, refreshRequest{Token: refreshToken})
	if err != nil {
		return "", err
	}
	req = req.withoutAuth()

	resp, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.httpError(req, resp)
	}

	var out refreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("refresh response did not contain a token")
	}
	return out.Token, nil
}

func (c *Client) clearCredentials() {
	if err := credstore.Clear(c.store); err != nil {
		c.logger.Warn("Failed to clear stored credentials", "error", err)
	}
}
