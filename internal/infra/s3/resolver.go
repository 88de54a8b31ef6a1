package infra_s3

import (
	"context"
	"fmt"
	"log"

	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MustEstablishConn builds an S3 client. A custom endpoint (MinIO and other
// S3 compatible stores) switches to path-style addressing and static
// credentials from S3_ACCESS_KEY/S3_SECRET_KEY when they are set.
func MustEstablishConn(cfg config.S3Archive, accessKey, secretKey string) *s3.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Endpoint == "" {
		fmt.Println("Using S3 client in region:", awsCfg.Region)
		return s3.NewFromConfig(awsCfg)
	}

	fmt.Println("Using S3 compatible endpoint:", cfg.Endpoint)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
}
