package client

import (
	"log/slog"

	"github.com/go-resty/resty/v2"
)

// instrument attaches debug logging hooks to the resty client.
func instrument(c *resty.Client) {
	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		slog.Debug("api request",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
		)
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		slog.Debug("api response",
			slog.String("method", res.Request.Method),
			slog.String("url", res.Request.URL),
			slog.Int("status", res.StatusCode()),
			slog.Duration("elapsed", res.Time()),
			slog.Int("bytes", len(res.Body())),
		)
		return nil
	})
	c.OnError(func(req *resty.Request, err error) {
		slog.Debug("api transport error",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
			slog.String("category", ErrorTypeLabel(classifyTransportError(err))),
			slog.Any("error", err),
		)
	})
}
