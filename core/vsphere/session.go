package vsphere

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/session"
	"github.com/vmware/govmomi/session/keepalive"
	"github.com/vmware/govmomi/vapi/rest"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	"github.com/vmware/govmomi/vim25/soap"
	vimtypes "github.com/vmware/govmomi/vim25/types"
	"go.uber.org/zap"
)

// ErrInvalidLogin is returned when vCenter rejects the credentials.
// It is never retried.
var ErrInvalidLogin = errors.New("invalid vCenter credentials")

// Idle time before a keepalive will be invoked.
const keepAliveIdleTime = 5 * time.Minute

// ConnectError reports a failed connection bootstrap.
type ConnectError struct {
	// Attempts is the number of connection attempts made.
	Attempts int
	// Err is the error of the last attempt.
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("vCenter connection failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Session is an authenticated vCenter connection. It holds both the SOAP
// (vim25) client and the REST (vAPI) client. The caller owns it and must
// call Close.
type Session struct {
	vim     *vim25.Client
	rest    *rest.Client
	manager *session.Manager
	logger  *zap.Logger
}

// Connect logs in to vCenter. The bootstrap is retried with exponential
// backoff up to cfg.ConnectAttempts times; invalid credentials fail at once.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	soapURL, err := soap.ParseURL(net.JoinHostPort(cfg.Host, cfg.Port))
	if err != nil {
		return nil, &ConnectError{Err: fmt.Errorf("failed to parse %s:%s: %w", cfg.Host, cfg.Port, err)}
	}

	maxAttempts := cfg.ConnectAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	if cfg.RetryInterval > 0 {
		policy.InitialInterval = cfg.RetryInterval
	}
	policy.MaxElapsedTime = 0

	attempts := 0
	var sess *Session
	op := func() error {
		attempts++
		s, err := dial(ctx, soapURL, cfg, logger)
		if err == nil {
			sess = s
			return nil
		}
		logger.Warn("vCenter connection attempt failed",
			zap.String("host", soapURL.Host),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err))
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxAttempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, &ConnectError{Attempts: attempts, Err: err}
	}

	logger.Info("Connected to vCenter", zap.String("host", soapURL.Host), zap.Int("attempts", attempts))
	return sess, nil
}

func dial(ctx context.Context, soapURL *url.URL, cfg Config, logger *zap.Logger) (*Session, error) {
	soapClient := soap.NewClient(soapURL, cfg.Insecure)
	if cfg.CAFile != "" {
		if err := soapClient.SetRootCAs(cfg.CAFile); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to set root CA %s: %w", cfg.CAFile, err))
		}
	}

	vimClient, err := vim25.NewClient(ctx, soapClient)
	if err != nil {
		return nil, fmt.Errorf("error creating a new vim client for url: %v: %w", soapURL, err)
	}

	userInfo := url.UserPassword(cfg.Username, cfg.Password)
	sm := session.NewManager(vimClient)

	vimClient.RoundTripper = keepalive.NewHandlerSOAP(
		soapClient,
		keepAliveIdleTime,
		soapKeepAlive(soapClient, sm, userInfo, logger))

	if err := sm.Login(ctx, userInfo); err != nil {
		if IsInvalidLogin(err) {
			return nil, backoff.Permanent(fmt.Errorf("%w: login failed for url: %v: %w", ErrInvalidLogin, soapURL, err))
		}
		return nil, fmt.Errorf("login failed for url: %v: %w", soapURL, err)
	}

	restClient := rest.NewClient(vimClient)
	restClient.Transport = keepalive.NewHandlerREST(
		restClient,
		keepAliveIdleTime,
		restKeepAlive(restClient, userInfo, logger))

	if err := restClient.Login(ctx, userInfo); err != nil {
		_ = sm.Logout(ctx)
		return nil, fmt.Errorf("rest login failed for url: %v: %w", soapURL, err)
	}

	return &Session{vim: vimClient, rest: restClient, manager: sm, logger: logger}, nil
}

// soapKeepAlive re-authenticates the vim client once its session expired.
func soapKeepAlive(sc *soap.Client, sm *session.Manager, userInfo *url.Userinfo, logger *zap.Logger) func() error {
	return func() error {
		ctx := context.Background()
		if _, err := methods.GetCurrentTime(ctx, sc); err != nil && IsNotAuthenticated(err) {
			logger.Info("Re-authenticating vim client")
			if err = sm.Login(ctx, userInfo); err != nil && IsInvalidLogin(err) {
				logger.Error("Invalid login in keepalive handler", zap.Error(err))
				return err
			}
		} else if err != nil {
			logger.Warn("Error in vim client keepalive handler", zap.Error(err))
		}
		return nil
	}
}

// restKeepAlive re-authenticates the REST client once its session expired.
func restKeepAlive(c *rest.Client, userInfo *url.Userinfo, logger *zap.Logger) func() error {
	return func() error {
		ctx := context.Background()
		if sess, err := c.Session(ctx); err == nil && sess == nil {
			logger.Info("Re-authenticating REST client")
			if err = c.Login(ctx, userInfo); err != nil {
				logger.Error("Invalid login in keepalive handler", zap.Error(err))
				return err
			}
		} else if err != nil {
			logger.Warn("Error in REST client keepalive handler", zap.Error(err))
		}
		return nil
	}
}

// IsInvalidLogin reports whether err is an InvalidLogin fault.
func IsInvalidLogin(err error) bool {
	return fault.Is(err, &vimtypes.InvalidLogin{})
}

// IsNotAuthenticated reports whether err is a NotAuthenticated fault.
func IsNotAuthenticated(err error) bool {
	return fault.Is(err, &vimtypes.NotAuthenticated{})
}

// Vim returns the SOAP client.
func (s *Session) Vim() *vim25.Client {
	return s.vim
}

// REST returns the vAPI client.
func (s *Session) REST() *rest.Client {
	return s.rest
}

// Close logs out both clients.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if err := s.rest.Logout(ctx); err != nil {
		errs = append(errs, fmt.Errorf("rest logout: %w", err))
	}
	if err := s.manager.Logout(ctx); err != nil {
		errs = append(errs, fmt.Errorf("vim logout: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("vCenter logout failed", zap.Error(err))
		return err
	}
	return nil
}
