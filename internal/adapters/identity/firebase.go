package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2/google"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseJWKSURL publishes the keys Firebase Auth signs ID tokens with.
const FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

const firebaseIssuerPrefix = "https://securetoken.google.com/"

var identityToolkitScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/firebase",
}

// FirebaseClaims are the claims of a Firebase Auth ID token that we read.
type FirebaseClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// AccountRevoker invalidates every provider session of a user issued before validSince.
type AccountRevoker interface {
	RevokeSessions(ctx context.Context, localID string, validSince time.Time) error
}

// FirebaseOracle verifies Firebase Auth ID tokens against the published JWKS
// and revokes sessions through the Identity Toolkit API.
type FirebaseOracle struct {
	projectID string
	keyFunc   jwt.Keyfunc
	revoker   AccountRevoker
	jwks      *keyfunc.JWKS
	now       func() time.Time
}

// NewFirebaseOracle fetches the signing keys and builds the admin client.
// credentialsFile may be empty, in which case application default credentials are used.
func NewFirebaseOracle(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*FirebaseOracle, error) {
	jwks, err := keyfunc.Get(FirebaseJWKSURL, keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			logger.Warn("Failed to refresh Firebase signing keys", slog.String("error", err.Error()))
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load Firebase signing keys: %w", err)
	}

	revoker, err := newToolkitRevoker(ctx, credentialsFile)
	if err != nil {
		jwks.EndBackground()
		return nil, err
	}

	oracle := NewFirebaseOracleWithKeys(projectID, jwks.Keyfunc, revoker)
	oracle.jwks = jwks
	return oracle, nil
}

// NewFirebaseOracleWithKeys builds an oracle from an already resolved key source.
func NewFirebaseOracleWithKeys(projectID string, keyFunc jwt.Keyfunc, revoker AccountRevoker) *FirebaseOracle {
	return &FirebaseOracle{
		projectID: projectID,
		keyFunc:   keyFunc,
		revoker:   revoker,
		now:       time.Now,
	}
}

func (o *FirebaseOracle) VerifyIDToken(ctx context.Context, idToken string) (*domain.FederatedIdentity, error) {
	claims := &FirebaseClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, o.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuerPrefix+o.projectID),
		jwt.WithAudience(o.projectID),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)
	if err != nil {
		return nil, fmt.Errorf("firebase ID token validation failed: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("firebase ID token has no subject")
	}
	if claims.AuthTime > o.now().Unix() {
		return nil, errors.New("firebase ID token auth_time is in the future")
	}
	return &domain.FederatedIdentity{Subject: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
}

func (o *FirebaseOracle) RevokeRefreshTokens(ctx context.Context, subject string) error {
	if o.revoker == nil {
		return errors.New("firebase session revocation is not configured")
	}
	// Identity Toolkit compares validSince in whole seconds.
	return o.revoker.RevokeSessions(ctx, subject, o.now().Truncate(time.Second))
}

// Close stops the background key refresh.
func (o *FirebaseOracle) Close() {
	if o.jwks != nil {
		o.jwks.EndBackground()
	}
}

type toolkitRevoker struct {
	svc *identitytoolkit.Service
}

func newToolkitRevoker(ctx context.Context, credentialsFile string) (*toolkitRevoker, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	} else {
		creds, err := google.FindDefaultCredentials(ctx, identityToolkitScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to find default Google credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	}
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	return &toolkitRevoker{svc: svc}, nil
}

func (r *toolkitRevoker) RevokeSessions(ctx context.Context, localID string, validSince time.Time) error {
	_, err := r.svc.Relyingparty.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		LocalId:    localID,
		ValidSince: validSince.Unix(),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to revoke sessions for %s: %w", localID, err)
	}
	return nil
}
