package docstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/pkg/api"
)

// firebaseClient talks to the Firebase Realtime Database REST interface.
// Reads request an ETag per value; conditional writes send it back in the
// if-match header and the database answers 412 when the value moved in
// between. That pair implements the version precondition of Client.
type firebaseClient struct {
	databaseURL string
	secret      string

	apiGenerator api.Generator
}

func NewFirebaseClient(cfg config.FirebaseConfigs) *firebaseClient {
	return &firebaseClient{
		databaseURL:  strings.TrimSuffix(cfg.DatabaseURL, "/"),
		secret:       cfg.Secret,
		apiGenerator: api.NewGenerator(),
	}
}

func (c *firebaseClient) Get(ctx context.Context, key string) (*Document, error) {
	resp, err := c.apiGenerator.New(c.databaseURL, "/%s.json", key).
		Header("X-Firebase-ETag", "true").
		Query(c.auth()).
		GET(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("document store responded with status %d", resp.Code)
	}

	doc := &Document{Key: key, Version: resp.Header.Get("ETag")}
	if resp.Body == nil {
		return doc, ErrNotFound
	}

	value, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, fmt.Errorf("document under %s is not an object", key)
	}

	doc.Value = map[string]any(value)
	return doc, nil
}

func (c *firebaseClient) CompareAndSwap(
	ctx context.Context, key, expectedVersion string, value map[string]any,
) (string, error) {
	resp, err := c.apiGenerator.New(c.databaseURL, "/%s.json", key).
		Header("if-match", expectedVersion).
		Header("X-Firebase-ETag", "true").
		Query(c.auth()).
		Body(api.JSON(value)).
		PUT(ctx)
	if err != nil {
		return "", err
	}

	if resp.Code == http.StatusPreconditionFailed {
		return "", ErrVersionConflict
	}

	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("document store responded with status %d", resp.Code)
	}

	return resp.Header.Get("ETag"), nil
}

func (c *firebaseClient) Delete(ctx context.Context, key, expectedVersion string) error {
	resp, err := c.apiGenerator.New(c.databaseURL, "/%s.json", key).
		Header("if-match", expectedVersion).
		Query(c.auth()).
		DELETE(ctx)
	if err != nil {
		return err
	}

	if resp.Code == http.StatusPreconditionFailed {
		return ErrVersionConflict
	}

	if resp.Code != http.StatusOK && resp.Code != http.StatusNoContent {
		return fmt.Errorf("document store responded with status %d", resp.Code)
	}

	return nil
}

func (c *firebaseClient) auth() api.Parameter {
	if c.secret == "" {
		return nil
	}

	return api.Parameter{"auth": c.secret}
}
