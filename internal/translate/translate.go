// Package translate wraps the DeepL text translation API.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("the translation service is not configured")

type Translator interface {
	Translate(ctx context.Context, text, source, dest string) (string, error)
}

type DeepL struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewDeepL(apiKey, apiURL string) *DeepL {
	return &DeepL{apiKey: apiKey, apiURL: apiURL, client: &http.Client{Timeout: 10 * time.Second}}
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate converts text from the source language to dest. An empty source
// lets the service detect it.
func (d *DeepL) Translate(ctx context.Context, text, source, dest string) (string, error) {
	if d == nil || d.apiKey == "" {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(dest))
	if source != "" {
		form.Set("source_lang", strings.ToUpper(source))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: service returned status %d", resp.StatusCode)
	}

	var out deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(out.Translations) == 0 {
		return "", errors.New("translate: empty response")
	}
	return out.Translations[0].Text, nil
}
