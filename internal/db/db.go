package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultConnectTimeout = 10 * time.Second

// OpenMongo connects and pings. Free-form documents (tickets) decode nested
// objects as maps so they serialise back to the JSON the client sent.
func OpenMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	opts := options.Client().
		ApplyURI(uri).
		SetTimeout(timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}
