package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// S3Publisher uploads finished MP3 files to an S3 bucket
type S3Publisher struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
	logger   *zap.Logger
}

// NewS3Publisher creates a publisher from config. Static keys are optional;
// without them the default AWS credential chain applies.
func NewS3Publisher(config *domain.PublishConfig, logger *zap.Logger) (*S3Publisher, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" && config.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return newS3Publisher(s3manager.NewUploader(sess), config.Bucket, config.Prefix, logger), nil
}

func newS3Publisher(uploader s3manageriface.UploaderAPI, bucket, prefix string, logger *zap.Logger) *S3Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Publisher{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger,
	}
}

// Publish uploads localPath and returns the object location
func (p *S3Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	key := path.Join(p.prefix, filepath.Base(localPath))

	result, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	p.logger.Info("Published output",
		zap.String("bucket", p.bucket),
		zap.String("key", key),
		zap.String("location", result.Location))

	return result.Location, nil
}
