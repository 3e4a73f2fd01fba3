package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	firestorelib "cloud.google.com/go/firestore"
	"github.com/astralabs/astra-backend/pkg/config"
	"github.com/astralabs/astra-backend/pkg/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const pingTimeout = 5 * time.Second

// Client wraps the Firestore connection plus the collection names the API uses.
type Client struct {
	raw              *firestorelib.Client
	imagesCollection string
	usersCollection  string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New bootstraps a Firestore client from explicit credentials or ADC and
// verifies connectivity.
func New(ctx context.Context, cfg config.FirestoreConfig, logg *logger.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("gcp project id is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ApplicationCredentials))
	}

	raw, err := firestorelib.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	client := &Client{
		raw:              raw,
		imagesCollection: cfg.ImagesCollection,
		usersCollection:  cfg.UsersCollection,
	}

	if err := client.Ping(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("firestore health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "firestore client initialized")
	}

	return client, nil
}

// Raw returns the underlying Firestore client.
func (c *Client) Raw() *firestorelib.Client {
	if c == nil {
		return nil
	}
	return c.raw
}

// Images returns the image records collection handle.
func (c *Client) Images() *firestorelib.CollectionRef {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Collection(c.imagesCollection)
}

// Users returns the user records collection handle.
func (c *Client) Users() *firestorelib.CollectionRef {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Collection(c.usersCollection)
}

// Ping issues a bounded single-document read to prove connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errors.New("firestore client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	iter := c.raw.Collection(c.usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore read check: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
