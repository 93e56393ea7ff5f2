// internal/workers/infrastructure/send-rejection/handler.go
package sendrejection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	awsclients "github.com/cinematicsodium/awards/internal/common/aws"
	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const (
	TaskType = "send-rejection"

	// snsSubjectLimit is the longest subject SNS accepts.
	snsSubjectLimit = 100
)

var (
	ErrEmailSendFailed  = errors.New("EMAIL_SEND_FAILED")
	ErrEscalationFailed = errors.New("ESCALATION_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
	clock     func() time.Time
}

// NewHandler connects to SES and SNS only for the channels that are enabled.
func NewHandler(ctx context.Context, config *Config, log logger.Logger) (*Handler, error) {
	var sesClient SESService
	var snsClient SNSService

	if config.EmailEnabled {
		c, err := awsclients.NewSESClient(ctx, config.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		sesClient = c
	}
	if config.EscalationEnabled {
		c, err := awsclients.NewSNSClient(ctx, config.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		snsClient = c
	}
	return NewHandlerWithClients(config, sesClient, snsClient, log), nil
}

func NewHandlerWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
		clock:     time.Now,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	rec := input.Record
	if rec == nil || rec.Rejection == nil {
		return nil, apperrors.NewConfigurationError("send-rejection needs a rejected record")
	}

	data := templateData(input.BatchID, rec)
	subject := renderTemplate(subjectTemplate, data)
	body := renderTemplate(bodyTemplate, data)

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.clock().UTC().Format(time.RFC3339),
	}

	if h.config.EmailEnabled && h.sesClient != nil && h.config.ToEmail != "" {
		if err := h.sendEmail(ctx, subject, body); err != nil {
			h.logger.Error("rejection email failed", map[string]interface{}{
				"source": rec.Source,
				"error":  err.Error(),
			})
			return nil, apperrors.NewNotificationSendFailedError("ses", err)
		}
		out.EmailSent = true
	}

	if h.shouldEscalate(rec.Rejection) {
		if err := h.publish(ctx, subject, rec); err != nil {
			h.logger.Error("rejection escalation failed", map[string]interface{}{
				"source": rec.Source,
				"error":  err.Error(),
			})
			return nil, apperrors.NewNotificationSendFailedError("sns", err)
		}
		out.Escalated = true
	}

	if out.EmailSent || out.Escalated {
		out.Status = StatusSent
	}

	h.logger.Info("rejection routed", map[string]interface{}{
		"source":    rec.Source,
		"code":      rec.Rejection.Code,
		"emailSent": out.EmailSent,
		"escalated": out.Escalated,
	})
	return out, nil
}

func (h *Handler) shouldEscalate(rej *models.Rejection) bool {
	return h.config.EscalationEnabled && h.snsClient != nil && h.config.TopicARN != "" &&
		slices.Contains(h.config.EscalateCodes, rej.Code)
}

func (h *Handler) sendEmail(ctx context.Context, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{h.config.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}
	return nil
}

// publish sends the rejection as JSON with its code as a message attribute.
func (h *Handler) publish(ctx context.Context, subject string, rec *models.AwardRecord) error {
	payload, err := json.Marshal(map[string]interface{}{
		"source":    rec.Source,
		"variant":   rec.Variant,
		"rejection": rec.Rejection,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal escalation: %v", ErrEscalationFailed, err)
	}

	if len(subject) > snsSubjectLimit {
		subject = subject[:snsSubjectLimit]
	}
	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"code": {DataType: aws.String("String"), StringValue: aws.String(rec.Rejection.Code)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEscalationFailed, err)
	}
	return nil
}

func templateData(batchID string, rec *models.AwardRecord) map[string]interface{} {
	names := make([]string, 0, len(rec.Nominees()))
	for _, e := range rec.Nominees() {
		names = append(names, e.Name)
	}
	nominees := strings.Join(names, "; ")
	if nominees == "" {
		nominees = "none resolved"
	}

	source := rec.Source
	if source == "" {
		source = "(unnamed submission)"
	}

	return map[string]interface{}{
		"source":   source,
		"code":     rec.Rejection.Code,
		"category": rec.Rejection.Category,
		"message":  rec.Rejection.Message,
		"details":  rec.Rejection.Details,
		"nominees": nominees,
		"batchId":  batchID,
	}
}

// renderTemplate replaces {{key}} placeholders and drops unknown ones.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
