package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

func (f *FirebaseAuthClient) GenerateLongLivedToken(ctx context.Context, uid string) (string, error) {

	customToken, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	if f.apiKey != "" {
		idToken, err := f.exchangeCustomTokenForIDToken(ctx, customToken)
		if err != nil {
			return "", err
		}
		return idToken, nil
	}

	return customToken, nil
}

func (f *FirebaseAuthClient) exchangeCustomTokenForIDToken(ctx context.Context, customToken string) (string, error) {
	url := fmt.Sprintf("https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken?key=%s", f.apiKey)

	body, err := json.Marshal(map[string]interface{}{
		"token":             customToken,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	var result struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.IDToken, nil
}
