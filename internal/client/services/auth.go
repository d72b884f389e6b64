// Package services contains application services for the cost analytics
// client. This file defines the authentication service: online/offline
// login, register, liveness probe, and housekeeping of locally cached auth
// metadata.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/repositories/metadata"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/dbx"
)

const (
	metaKeyEmail        = "auth.email"
	metaKeyPasswordHash = "auth.password_hash"
)

// AuthService defines authentication operations for the client shell.
//
// Contract:
//   - OnlineLogin: authenticate against the server and cache credentials
//     for later offline verification.
//   - OfflineLogin: verify credentials against the locally cached hash,
//     granting read access to local state while the backend is down.
//   - Register: create a new user on the server.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//   - ClearOfflineData: wipe locally cached auth metadata.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	OnlineLogin(ctx context.Context, email string, password []byte) (*api.Session, error)
	OfflineLogin(ctx context.Context, email string, password []byte) error
	Register(ctx context.Context, email string, password []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	ClearOfflineData(ctx context.Context) error
}

// authService is the concrete AuthService backed by the remote client and a
// local SQL database for cached credentials.
type authService struct {
	client api.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client api.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// OnlineLogin authenticates against the server and caches the email plus a
// bcrypt hash of the password so a later OfflineLogin can verify the same
// credentials without the server.
func (a *authService) OnlineLogin(ctx context.Context, email string, password []byte) (*api.Session, error) {
	session, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, email, password); err != nil {
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}
	return session, nil
}

// OfflineLogin verifies credentials against the locally cached hash. It
// returns common.ErrLocalDataNotAvailable when no online login ever
// succeeded on this device, and common.ErrUnauthorized on a mismatch.
func (a *authService) OfflineLogin(ctx context.Context, email string, password []byte) error {
	metadataRepo := a.getMetadataRepo()

	savedEmail, err := metadataRepo.Get(ctx, metaKeyEmail)
	if err != nil {
		return err
	}
	if savedEmail == nil {
		return common.ErrLocalDataNotAvailable
	}
	if string(savedEmail) != email {
		return common.ErrUnauthorized
	}

	savedHash, err := metadataRepo.Get(ctx, metaKeyPasswordHash)
	if err != nil {
		return err
	}
	if savedHash == nil {
		return common.ErrLocalDataNotAvailable
	}

	if err := bcrypt.CompareHashAndPassword(savedHash, password); err != nil {
		return common.ErrUnauthorized
	}
	return nil
}

// saveOfflineData persists the credential cache in a single transaction.
func (a *authService) saveOfflineData(ctx context.Context, email string, password []byte) error {
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metaKeyEmail, []byte(email)); err != nil {
			return err
		}
		return repo.Set(ctx, metaKeyPasswordHash, hash)
	})
}

// Register creates a new account on the server.
func (a *authService) Register(ctx context.Context, email string, password []byte) error {
	return a.client.Register(ctx, email, string(password))
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// ClearOfflineData wipes locally cached auth metadata (e.g., on logout).
func (a *authService) ClearOfflineData(ctx context.Context) error {
	metadataRepo := a.getMetadataRepo()
	if err := metadataRepo.Delete(ctx, metaKeyEmail); err != nil {
		return err
	}
	return metadataRepo.Delete(ctx, metaKeyPasswordHash)
}
