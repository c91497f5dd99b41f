package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"go.opentelemetry.io/otel/codes"
)

// refresh exchanges the refresh token at the fixed refresh endpoint. It goes
// straight to dispatch so a rejected refresh can never trigger another refresh.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "imvestor.refresh")
	defer span.End()

	token, err := c.exchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return token, nil
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token in session", errors.ErrRefreshFailed)
	}

	resp, err := c.dispatch(ctx, &Request{Method: http.MethodGet, Path: c.refreshPath}, refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
	}

	var body dto.RefreshResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("%w: decode refresh response: %w", errors.ErrRefreshFailed, err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("%w: refresh response has no token", errors.ErrRefreshFailed)
	}
	return body.Token, nil
}
