package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

var ErrFirebaseDisabled = errors.New("firebase login is not configured")

// Identity is what a verified Firebase ID token tells us about the caller.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

type FirebaseVerifier struct {
	client    *fbauth.Client
	projectID string
}

func NewFirebaseVerifier(ctx context.Context, projectID, credentialsJSON string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client, projectID: projectID}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v == nil || v.client == nil {
		return Identity{}, ErrFirebaseDisabled
	}
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if v.projectID != "" && token.Audience != v.projectID {
		return Identity{}, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	if email == "" {
		return Identity{}, fmt.Errorf("%w: token carries no email", ErrInvalidToken)
	}
	return Identity{UID: token.UID, Email: email, EmailVerified: verified, Name: name}, nil
}
