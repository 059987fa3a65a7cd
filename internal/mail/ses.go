package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// SESConfig holds what is needed to reach Amazon SES. Empty keys fall back
// to the default AWS credential chain.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	From            string
}

// sendEmailAPI is the part of the SES client the mailer uses.
type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends email through the SES v2 API.
type SESMailer struct {
	client sendEmailAPI
	from   string
	log    *zap.Logger
}

// NewSESMailer loads AWS configuration and creates an SES client.
func NewSESMailer(ctx context.Context, cfg SESConfig, log *zap.Logger) (*SESMailer, error) {
	if cfg.From == "" {
		return nil, errors.New("ses mailer: sender address is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newSESMailer(sesv2.NewFromConfig(awsCfg), cfg.From, log), nil
}

func newSESMailer(client sendEmailAPI, from string, log *zap.Logger) *SESMailer {
	return &SESMailer{
		client: client,
		from:   from,
		log:    log.With(zap.String("component", "mail")),
	}
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	startTime := time.Now()

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}

	m.log.Info("email sent",
		zap.String("to", msg.To),
		zap.String("tag", msg.Tag),
		zap.String("message_id", aws.ToString(out.MessageId)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}
