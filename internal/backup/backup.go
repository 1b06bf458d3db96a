// Package backup takes consistent SQLite snapshots and optionally ships them
// to S3-compatible object storage.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"medbill/m/internal/config"
	"medbill/m/internal/database"
	"medbill/m/internal/timeutil"
)

const filePrefix = "medbill-"

// Uploader is the subset of the S3 client used for uploads.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Snapshot struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
	ObjectKey string `json:"object_key,omitempty"`
}

type Service struct {
	db       *sqlx.DB
	dir      string
	bucket   string
	uploader Uploader
}

// New creates a backup service writing to dir. A nil uploader keeps
// snapshots local.
func New(db *sqlx.DB, dir string, uploader Uploader, bucket string) *Service {
	return &Service{db: db, dir: dir, uploader: uploader, bucket: bucket}
}

// NewS3Client builds a client for the configured bucket, or returns nil when
// no bucket is set. Static keys are optional; without them the default AWS
// credential chain applies.
func NewS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	if cfg.BackupS3Bucket == "" {
		return nil, nil
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.BackupS3Region)}
	if cfg.BackupS3Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.BackupS3Key, cfg.BackupS3Secret, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BackupS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BackupS3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Snapshot writes a point-in-time copy of the database with VACUUM INTO and
// uploads it when an uploader is configured.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.db.DriverName() != database.DriverSQLite {
		return Snapshot{}, fmt.Errorf("snapshots need sqlite; back up %s with its own tooling", s.db.DriverName())
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Snapshot{}, fmt.Errorf("create backup dir: %w", err)
	}

	now := timeutil.Now()
	name := filePrefix + now.Format("20060102-150405") + ".db"
	path := filepath.Join(s.dir, name)
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return Snapshot{}, fmt.Errorf("vacuum into %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Name: name, Size: info.Size(), CreatedAt: now.Format(timeutil.DateTimeLayout)}

	if s.uploader != nil {
		key, err := s.upload(ctx, path, name, now.Format(timeutil.DateLayout))
		if err != nil {
			return snap, err
		}
		snap.ObjectKey = key
	}
	log.Info().Str("file", name).Int64("bytes", snap.Size).Str("object", snap.ObjectKey).Msg("backup written")
	return snap, nil
}

func (s *Service) upload(ctx context.Context, path, name, day string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := fmt.Sprintf("backups/%s/%s-%s", day, uuid.NewString(), name)
	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	return key, nil
}

// List returns local snapshots, newest first.
func (s *Service) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	snaps := []Snapshot{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime().In(timeutil.IST).Format(timeutil.DateTimeLayout),
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name > snaps[j].Name })
	return snaps, nil
}
