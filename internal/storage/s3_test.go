package storage

import (
	"errors"
	"testing"
)

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(S3Config{Region: "us-east-1"}); err == nil {
		t.Error("NewS3Store accepted an empty bucket")
	}
}

func TestS3StoreURLConstruction(t *testing.T) {
	store, err := NewS3Store(S3Config{Bucket: "assets", Region: "eu-west-1"})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}

	want := "https://assets.s3.eu-west-1.amazonaws.com"
	if store.BaseURL() != want {
		t.Errorf("BaseURL = %q, want %q", store.BaseURL(), want)
	}

	key, err := store.keyFromURL(want + "/uploads/abc.png")
	if err != nil {
		t.Fatalf("keyFromURL failed: %v", err)
	}
	if key != "uploads/abc.png" {
		t.Errorf("keyFromURL = %q, want uploads/abc.png", key)
	}
}

func TestS3StoreCustomEndpointUsesPathStyle(t *testing.T) {
	store, err := NewS3Store(S3Config{
		Bucket:   "assets",
		Region:   "us-east-1",
		Endpoint: "http://minio.local:9000/",
	})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}

	want := "http://minio.local:9000/assets"
	if store.BaseURL() != want {
		t.Errorf("BaseURL = %q, want %q", store.BaseURL(), want)
	}
}

func TestS3StoreKeyFromForeignURL(t *testing.T) {
	store, err := NewS3Store(S3Config{Bucket: "assets", Region: "us-east-1"})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}

	if _, err := store.keyFromURL("https://other-bucket.s3.us-east-1.amazonaws.com/x"); !errors.Is(err, ErrForeignURL) {
		t.Errorf("foreign URL: err = %v, want ErrForeignURL", err)
	}
}
