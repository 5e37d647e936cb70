package facades

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sbilibin2017/contact-book/internal/logger"
)

// AvatarCache caches resolved avatar URLs keyed by email.
type AvatarCache interface {
	Get(ctx context.Context, email string) (*string, error)
	Set(ctx context.Context, email, url string) error
}

// GravatarFacade resolves avatar URLs for emails against the Gravatar
// service. Lookup failures are reported to the caller, which is expected
// to absorb them: an account is never worth less than its avatar.
type GravatarFacade struct {
	client *resty.Client
	cache  AvatarCache
}

// NewGravatarFacade creates a facade with a default-configured resty client.
// The cache may be nil, in which case every lookup hits Gravatar.
func NewGravatarFacade(baseURL string, cache AvatarCache) *GravatarFacade {
	if baseURL == "" {
		baseURL = "https://www.gravatar.com"
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(5 * time.Second)

	return &GravatarFacade{client: client, cache: cache}
}

// Lookup returns the Gravatar URL for the email, or nil when the email has
// no Gravatar. The probe uses d=404 so unknown emails answer with 404
// instead of a generated placeholder image.
func (f *GravatarFacade) Lookup(ctx context.Context, email string) (*string, error) {
	if f.cache != nil {
		cached, err := f.cache.Get(ctx, email)
		if err != nil {
			logger.Log.Errorw("avatar cache lookup failed", "email", email, "err", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	path := fmt.Sprintf("/avatar/%s", hex.EncodeToString(sum[:]))

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("d", "404").
		Head(path)
	if err != nil {
		logger.Log.Infow("gravatar lookup", "email", email, "error", err)
		return nil, err
	}

	logger.Log.Infow("gravatar lookup",
		"email", email,
		"status", resp.StatusCode(),
	)

	if resp.StatusCode() != http.StatusOK {
		return nil, nil
	}

	url := f.client.BaseURL + path
	if f.cache != nil {
		if err := f.cache.Set(ctx, email, url); err != nil {
			logger.Log.Errorw("avatar cache store failed", "email", email, "err", err)
		}
	}
	return &url, nil
}
