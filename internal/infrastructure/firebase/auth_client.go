package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

type FirebaseAuthClient struct {
	client *auth.Client
	apiKey string
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
		apiKey: apiKey,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *FirebaseAuthClient) GenerateToken(ctx context.Context, uid string) (string, error) {
	token, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	return token, nil
}

// TestConnection verifies the Auth backend is reachable. A NotFound for the
// probe UID still proves connectivity.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	_, err := f.client.GetUser(ctx, "connectivity-probe")
	if err != nil && auth.IsUserNotFound(err) {
		return nil
	}
	return err
}
