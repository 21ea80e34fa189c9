// Package storefront is the customer-facing command line client. It owns the
// session cart and the checkout; the server only ever sees placed orders.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/adapter/client"
	"github.com/rl1809/aura-kitchen/internal/core/cart"
	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

// API is the subset of the HTTP client the storefront uses.
type API interface {
	ListMenu(ctx context.Context, q client.MenuQuery) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error)
	SubmitOrder(ctx context.Context, key string, sub domain.OrderSubmission) (*domain.Order, error)
	ListReviews(ctx context.Context) ([]domain.Review, error)
	CreateReview(ctx context.Context, sub domain.ReviewSubmission) (*domain.Review, error)
	SendMessage(ctx context.Context, sub domain.MessageSubmission) (*domain.Message, error)
	Register(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	SessionID() string
	SetSessionID(sid string)
}

type App struct {
	Out        io.Writer
	Log        logrus.FieldLogger
	APIURL     string
	Session    string
	SessionDir string

	// NewAPI builds the API client once flags are parsed.
	NewAPI func(baseURL string) (API, error)

	api API
}

func DefaultAPI(baseURL string) (API, error) {
	return client.New(baseURL)
}

func (a *App) client() (API, error) {
	if a.api != nil {
		return a.api, nil
	}
	newAPI := a.NewAPI
	if newAPI == nil {
		newAPI = DefaultAPI
	}
	api, err := newAPI(a.APIURL)
	if err != nil {
		return nil, err
	}
	sid, err := a.loadAuth()
	if err != nil {
		a.Log.WithError(err).Warn("could not restore login")
	}
	api.SetSessionID(sid)
	a.api = api
	return api, nil
}

// openCart restores the cart of the current browsing session.
func (a *App) openCart(ctx context.Context) (*cart.Cart, error) {
	store, err := cart.NewFileStore(a.SessionDir, a.Session)
	if err != nil {
		return nil, err
	}
	return cart.Open(ctx, store)
}

func (a *App) authPath() string {
	return filepath.Join(a.SessionDir, "auth-"+a.Session)
}

func (a *App) loadAuth() (string, error) {
	if filepath.Base(a.Session) != a.Session {
		return "", fmt.Errorf("invalid session id %q", a.Session)
	}
	data, err := os.ReadFile(a.authPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) saveAuth(sid string) error {
	if err := os.MkdirAll(a.SessionDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.authPath(), []byte(sid), 0o600)
}

func (a *App) clearAuth() error {
	err := os.Remove(a.authPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
