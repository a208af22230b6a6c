// Package identity resolves the locally persisted user token that lets the
// backend correlate requests from one client.
package identity

import (
	"context"
	"strconv"
	"time"

	"github.com/comigor/rahagir-go/internal/logger"
	"github.com/comigor/rahagir-go/internal/storage"
)

// Prefix starts every generated token.
const Prefix = "web_user_"

// DefaultKey is the store key the token lives under.
const DefaultKey = "rahagir_user_id"

// Provider reads the token from a store, creating it on first use.
type Provider struct {
	store storage.Store
	key   string
	now   func() time.Time
}

// New returns a Provider that keeps the token under key in store.
func New(store storage.Store, key string) *Provider {
	if key == "" {
		key = DefaultKey
	}
	return &Provider{store: store, key: key, now: time.Now}
}

// Resolve returns the stored token, generating and storing
// "web_user_<unix millis>" when none exists. Store failures are logged and
// never fatal: a read failure generates a fresh token and a write failure
// leaves it valid for this call only.
func (p *Provider) Resolve(ctx context.Context) string {
	id, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		logger.L.Warn("identity read failed; generating a new one", "key", p.key, "error", err)
	}
	if ok && id != "" {
		return id
	}

	id = Prefix + strconv.FormatInt(p.now().UnixMilli(), 10)
	if err := p.store.Set(ctx, p.key, id); err != nil {
		logger.L.Warn("identity write failed", "key", p.key, "error", err)
	} else {
		logger.L.Info("created user identity", "user_id", id)
	}
	return id
}
