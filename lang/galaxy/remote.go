package galaxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/akesling/galaxypad/internal/netlog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// HTTPRemoteConfig configures an HTTP-backed Remote.
type HTTPRemoteConfig struct {
	// Endpoint is the alien server URL to POST modulations to.
	Endpoint string
	// APIKey is sent as the `apiKey` query parameter.
	APIKey string
	// Timeout bounds a single exchange; zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration
	// Client is the HTTP client to use; nil selects http.DefaultClient.
	Client *http.Client
}

// HTTPRemote builds a Remote that POSTs modulated bit-strings to the
// configured endpoint and returns the response body, per spec.md §6's
// wire format. Each call runs under its own errgroup so the configured
// timeout cancels the in-flight request rather than leaking it.
func HTTPRemote(cfg HTTPRemoteConfig, log *logrus.Logger) Remote {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return func(ctx context.Context, bits string) (string, error) {
		ex := netlog.NewExchange(log)
		ex.WithField("bits_len", len(bits)).Debug("sending modulation to remote")

		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		g, gctx := errgroup.WithContext(ctx)
		var response string
		g.Go(func() error {
			body, err := postModulation(gctx, client, cfg.Endpoint, cfg.APIKey, bits)
			if err != nil {
				return err
			}
			response = body
			return nil
		})

		if err := g.Wait(); err != nil {
			ex.WithError(err).Error("remote exchange failed")
			return "", err
		}
		ex.WithField("bits_len", len(response)).Debug("received modulation from remote")
		return response, nil
	}
}

func postModulation(ctx context.Context, client *http.Client, endpoint, apiKey, bits string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "galaxy: parse remote endpoint")
	}
	q := u.Query()
	q.Set("apiKey", apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader([]byte(bits)))
	if err != nil {
		return "", errors.Wrap(err, "galaxy: build remote request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrRemoteFailure, "remote request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(ErrRemoteFailure, "reading remote response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrRemoteFailure, "remote responded %d: %s", resp.StatusCode, respBody)
	}
	return string(respBody), nil
}
