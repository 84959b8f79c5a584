package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"pfoca/internal/card"
	"pfoca/internal/config"
)

// s3Timeout bounds every vault call.
const s3Timeout = 5 * time.Minute

// S3Vault mirrors archives into an S3 bucket (or any S3-compatible endpoint)
// under <prefix><name>.
type S3Vault struct {
	name       string
	bucket     string
	prefix     string
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

// NewS3Vault builds an S3 client from the default AWS configuration chain,
// overridden by any region, endpoint or static credentials set in cfg.
func NewS3Vault(ctx context.Context, cfg config.VaultConfig) (*S3Vault, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3VaultWithClient(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, client), nil
}

// NewS3VaultWithClient wraps an existing client.
func NewS3VaultWithClient(name, bucket, prefix string, client *s3.Client) *S3Vault {
	return &S3Vault{
		name:       name,
		bucket:     bucket,
		prefix:     prefix,
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}
}

func (v *S3Vault) key(name string) string {
	return v.prefix + name
}

func (v *S3Vault) nameFromKey(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, v.prefix)
	if !ok || name == "" || strings.Contains(name, "/") || !strings.HasSuffix(name, card.ArchiveExt) {
		return "", false
	}
	return name, true
}

// PutArchive uploads an archive, using multipart upload for large files.
func (v *S3Vault) PutArchive(name string, r io.Reader, size int64) error {
	if err := validateName(name); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	counter := &countingReader{r: r}
	_, err := v.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(v.bucket),
		Key:         aws.String(v.key(name)),
		Body:        counter,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if counter.n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, counter.n)
	}
	return nil
}

// GetArchive downloads the named archive into memory and writes it to w.
func (v *S3Vault) GetArchive(name string, w io.Writer) error {
	if err := validateName(name); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	buf := manager.NewWriteAtBuffer(nil)
	_, err := v.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.key(name)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
		}
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// ListArchives returns the archive names directly under the prefix, in
// ascending order.
func (v *S3Vault) ListArchives() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	var names []string
	p := s3.NewListObjectsV2Paginator(v.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(v.bucket),
		Prefix: aws.String(v.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list archives: %w", err)
		}
		for _, obj := range page.Contents {
			if name, ok := v.nameFromKey(aws.ToString(obj.Key)); ok {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup checks that the bucket exists and is reachable with the
// configured credentials.
func (v *S3Vault) ValidateSetup() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Compile-time check that S3Vault implements card.Vault interface
var _ card.Vault = (*S3Vault)(nil)
