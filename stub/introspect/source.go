package introspect

// Snapshot source resolution. A snapshot may live on local disk or anywhere
// hashicorp/go-getter can fetch from:
//   - Local paths: pyfbsdk.yaml, /abs/path/pyfbsdk.json
//   - HTTP(S): https://ci.example.com/artifacts/pyfbsdk-2024.yaml
//   - Object stores: s3::https://..., gcs::https://...
//   - Files inside repositories: git::https://example.com/dumps.git//pyfbsdk.yaml

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
)

// remoteSnapshotFile is the name fetched snapshots are stored under.
const remoteSnapshotFile = "snapshot"

// SnapshotSource is a module snapshot available on local disk.
type SnapshotSource struct {
	// Path is the local file to read
	Path string
	// Original is the configured source
	Original string
	// Remote is set when the snapshot was fetched into a temp directory
	Remote bool

	cleanup func()
}

// Cleanup removes a fetched snapshot. Safe to call multiple times.
func (s *SnapshotSource) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// detect returns go-getter's normalized form of src and whether it names a
// remote source.
func detect(src string) (string, bool, error) {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}

	detected, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return "", false, errors.Wrapf(err, "unrecognized snapshot source %q", src)
	}
	u, err := url.Parse(detected)
	if err != nil {
		return "", false, errors.Wrapf(err, "unrecognized snapshot source %q", src)
	}
	return detected, u.Scheme != "" && u.Scheme != "file", nil
}

// IsRemoteSource reports whether src must be fetched before reading.
func IsRemoteSource(src string) bool {
	_, remote, err := detect(src)
	return err == nil && remote
}

// ResolveSnapshot makes src readable from local disk. Local paths are
// returned unchanged; remote sources are fetched into a temp directory that
// Cleanup removes.
func ResolveSnapshot(ctx context.Context, src string, log *zap.SugaredLogger) (*SnapshotSource, error) {
	log = logger.OrNop(log)

	detected, remote, err := detect(src)
	if err != nil {
		return nil, err
	}
	if !remote {
		return &SnapshotSource{Path: src, Original: src}, nil
	}

	tempDir, err := os.MkdirTemp("", "fbstubs-snapshot-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	dst := filepath.Join(tempDir, remoteSnapshotFile)

	pwd, _ := os.Getwd()
	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Pwd:     pwd,
		Mode:    getter.ClientModeFile,
		Getters: getter.Getters,
	}

	log.Infow("Fetching module snapshot",
		logger.FieldURL, detected,
		logger.FieldPath, dst,
	)
	if err := client.Get(); err != nil {
		os.RemoveAll(tempDir)
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to fetch module snapshot %s", src),
			"check module.snapshot; remote sources use go-getter syntax (https://, s3::, git::)",
		)
	}

	return &SnapshotSource{
		Path:     dst,
		Original: src,
		Remote:   true,
		cleanup: func() {
			log.Debugw("Removing fetched snapshot", logger.FieldPath, tempDir)
			os.RemoveAll(tempDir)
		},
	}, nil
}
