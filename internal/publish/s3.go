package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	log "github.com/sirupsen/logrus"
)

// S3Config locates the object a rendered report is uploaded to.
type S3Config struct {
	Bucket string
	Region string
	Key    string
	DryRun bool
}

func (c *S3Config) checkRequiredParams() bool {
	return c.Bucket != "" && c.Region != "" && c.Key != ""
}

// URI returns the s3:// address of the object.
func (c *S3Config) URI() string {
	return "s3://" + c.Bucket + "/" + c.Key
}

// S3Publisher uploads rendered reports to a bucket.
type S3Publisher struct {
	cfg      S3Config
	svc      s3iface.S3API
	uploader s3manageriface.UploaderAPI
}

// createS3Client creates an S3 client with the specified region
func createS3Client(region string) (*s3.S3, *s3manager.Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, nil, err
	}

	svc := s3.New(sess)
	uploader := s3manager.NewUploader(sess)

	return svc, uploader, nil
}

// NewS3Publisher creates the S3 clients from the default credential chain.
func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	if !cfg.checkRequiredParams() {
		return nil, fmt.Errorf("missing required parameters: bucket, region and key must be set")
	}
	svc, uploader, err := createS3Client(cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3Publisher{cfg: cfg, svc: svc, uploader: uploader}, nil
}

// checkBucketExists checks if the bucket exists in the S3 storage.
func (p *S3Publisher) checkBucketExists(ctx context.Context) error {
	_, err := p.svc.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.cfg.Bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	return nil
}

// Publish uploads body to the configured object. In dry-run mode nothing is sent.
func (p *S3Publisher) Publish(ctx context.Context, body []byte, contentType string, meta map[string]string) error {
	uri := p.cfg.URI()
	if p.cfg.DryRun {
		log.Warnf("DRY-RUN mode: skipping upload to %s", uri)
		return nil
	}

	if err := p.checkBucketExists(ctx); err != nil {
		return err
	}

	log.Debugf("uploading %d bytes to object %s", len(body), uri)
	_, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(p.cfg.Key),
		ContentType: aws.String(contentType),
		Metadata:    aws.StringMap(meta),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to %s: %w", uri, err)
	}
	log.Info("Report published successfully to ", uri)
	return nil
}
