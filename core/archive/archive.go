package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// RunReport is the persisted summary of one reconciliation run.
type RunReport struct {
	UserID     uint      `json:"user_id"`
	BattleTag  string    `json:"battle_tag"`
	Characters int       `json:"characters"`
	Guilds     int       `json:"guilds"`
	Deleted    int       `json:"deleted"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Archiver stores reconciliation run reports.
type Archiver interface {
	// StoreRunReport persists the report. Failures are expected to be
	// logged by the caller, never surfaced as the run's outcome.
	StoreRunReport(ctx context.Context, report RunReport) error
}

// NewArchiver creates a Minio-backed archiver and ensures the bucket exists.
func NewArchiver(cfg Config) (Archiver, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	// Ensure timeout defaults if not set
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Create custom transport with strict timeouts
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	return &minioArchiver{client: client, bucket: cfg.Bucket}, nil
}

type minioArchiver struct {
	client *minio.Client
	bucket string
}

func (a *minioArchiver) StoreRunReport(ctx context.Context, report RunReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, objectName(report),
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to store run report: %w", err)
	}

	return nil
}

// objectName keys reports by user and completion time so repeated runs for
// the same user never overwrite each other.
func objectName(report RunReport) string {
	return fmt.Sprintf("runs/%d/%d.json", report.UserID, report.FinishedAt.Unix())
}
