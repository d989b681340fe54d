// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package poi

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wneessen/otherside/internal/http"
)

// RemoteTimeout is the timeout for fetching the dataset from a URL
const RemoteTimeout = time.Second * 30

//go:embed data/mcdonalds.json
var embeddedDataset []byte

// Embedded serves the dataset bundled with the binary
type Embedded struct{}

func (Embedded) Name() string {
	return "embedded"
}

func (Embedded) Load(context.Context) ([]PointOfInterest, error) {
	return decode(bytes.NewReader(embeddedDataset))
}

// File reads the dataset from a JSON file on disk
type File struct {
	Path string
}

func (f File) Name() string {
	return "file"
}

func (f File) Load(context.Context) ([]PointOfInterest, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return decode(file)
}

// Remote fetches the dataset from a URL
type Remote struct {
	URL    string
	client *http.Client
}

func NewRemote(client *http.Client, url string) Remote {
	return Remote{URL: url, client: client}
}

func (r Remote) Name() string {
	return "url"
}

func (r Remote) Load(ctx context.Context) ([]PointOfInterest, error) {
	var points []PointOfInterest
	code, err := r.client.GetJSON(ctx, r.URL, &points, nil, nil, RemoteTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	if code != 200 {
		return nil, fmt.Errorf("received non-positive response code while fetching dataset: %d", code)
	}
	if points == nil {
		return nil, errors.New("dataset is not a JSON array")
	}
	return points, nil
}

// BucketConfig describes the location of the dataset in S3-compatible storage
type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
	Object    string
}

// Bucket reads the dataset object from S3-compatible storage
type Bucket struct {
	client *minio.Client
	bucket string
	object string
}

func NewBucket(conf BucketConfig) (*Bucket, error) {
	if conf.Endpoint == "" || conf.Bucket == "" || conf.Object == "" {
		return nil, errors.New("endpoint, bucket and object are required for the S3 dataset")
	}
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
		Region: conf.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &Bucket{client: client, bucket: conf.Bucket, object: conf.Object}, nil
}

func (b *Bucket) Name() string {
	return "s3"
}

func (b *Bucket) Load(ctx context.Context) ([]PointOfInterest, error) {
	object, err := b.client.GetObject(ctx, b.bucket, b.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset object from S3: %w", err)
	}
	defer func() { _ = object.Close() }()

	points, err := decode(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset object %s/%s: %w", b.bucket, b.object, err)
	}
	return points, nil
}

func decode(r io.Reader) ([]PointOfInterest, error) {
	var points []PointOfInterest
	if err := json.NewDecoder(r).Decode(&points); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if points == nil {
		return nil, errors.New("dataset is not a JSON array")
	}
	return points, nil
}
