package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/douglaslassance/gitalong-go"
)

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	if errCause(err) != gitalong.ErrRepositoryNotSetup {
		t.Fatalf("got %v, want ErrRepositoryNotSetup", err)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte(`{"store_url": ""}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected an error for an empty store_url")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Configuration{
		StoreURL:          "https://example.com/gitalong",
		ModifyPermissions: true,
		TrackedExtensions: []string{".png", ".psd"},
		TrackUncommitted:  true,
	}
	if err := Save(dir, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.StoreURL != cfg.StoreURL {
		t.Errorf("StoreURL = %q, want %q", loaded.StoreURL, cfg.StoreURL)
	}
	if loaded.PullThreshold != DefaultPullThreshold {
		t.Errorf("PullThreshold = %d, want default %d", loaded.PullThreshold, DefaultPullThreshold)
	}
	if !filepath.IsAbs(Path(dir)) {
		t.Error("Path should be absolute given an absolute root")
	}
}

func errCause(err error) error {
	type causer interface{ Cause() error }
	for err != nil {
		c, ok := err.(causer)
		if !ok {
			return err
		}
		err = c.Cause()
	}
	return err
}
