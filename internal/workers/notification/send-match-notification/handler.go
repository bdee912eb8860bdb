// internal/workers/notification/send-match-notification/handler.go
package sendmatchnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	awsutil "printmatch-workers/internal/common/aws"
	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/metrics"
	"printmatch-workers/internal/common/validation"
	"printmatch-workers/internal/matching"
	"printmatch-workers/internal/repository"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-match-notification"
)

const (
	subjectTemplate = "{{count}} print producers matched your project {{projectId}}"
	smsTemplate     = "PrintMatch: {{count}} producers matched {{projectId}}. Top match: {{topProducer}} ({{topScore}}/100)."
)

var htmlBody = template.Must(template.New("matches").Parse(`<p>Hi {{.Name}},</p>
<p>We found {{len .Matches}} producers for your project.</p>
<ol>{{range .Matches}}
<li><strong>{{.Producer.Name}}</strong>: {{.MatchScore}}/100, {{.EstimatedPrice}}, {{.Turnaround}}<br>{{.Notes}}</li>{{end}}
</ol>`))

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ContactStore interface {
	GetContact(ctx context.Context, recipientType, id string) (*repository.Contact, error)
}

type Handler struct {
	config       *Config
	contacts     ContactStore
	sesClient    SESService
	snsClient    SNSService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, contacts ContactStore, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		contacts:     contacts,
		sesClient:    sesClient,
		snsClient:    snsClient,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.RecipientID == "" || input.RecipientType == "" {
		return nil, errors.NewInvalidInputError("recipientId and recipientType are required")
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	sendSMS := h.config.SMSEnabled && input.Urgent
	if !h.config.EmailEnabled && !sendSMS {
		h.logger.Debug("notifications disabled", map[string]interface{}{
			"recipientId": input.RecipientID,
		})
		return output, nil
	}
	if h.contacts == nil {
		return nil, errors.NewNotificationNoRecipientError(input.RecipientID)
	}

	contact, err := h.contacts.GetContact(ctx, input.RecipientType, input.RecipientID)
	if err != nil {
		return nil, err
	}
	email := contact.Email
	if email != "" && !validation.ValidateEmail(email) {
		h.logger.Warn("ignoring malformed email", map[string]interface{}{"recipientId": contact.ID})
		email = ""
	}
	phone := contact.Phone
	if phone != "" && !validation.ValidatePhone(phone) {
		h.logger.Warn("ignoring malformed phone number", map[string]interface{}{"recipientId": contact.ID})
		phone = ""
	}
	if email == "" && phone == "" {
		return nil, errors.NewNotificationNoRecipientError(input.RecipientID)
	}
	reachable := *contact
	reachable.Email, reachable.Phone = email, phone
	contact = &reachable

	top := topMatches(input.Matches, h.config.TopMatches)
	data := summaryData(input, top)

	if h.config.EmailEnabled && contact.Email != "" && h.sesClient != nil {
		if err := h.sendEmail(ctx, contact, top, data); err != nil {
			sendErr := errors.NewNotificationSendFailedError(ChannelEmail, err)
			h.logger.Error("email send failed", map[string]interface{}{
				"error":       sendErr.Details,
				"code":        string(sendErr.Code),
				"recipientId": contact.ID,
			})
			output.Status = StatusFailed
			return output, nil
		}
		output.Channels = append(output.Channels, ChannelEmail)
	}

	if sendSMS && contact.Phone != "" && h.snsClient != nil {
		message := renderTemplate(smsTemplate, data)
		if _, err := h.snsClient.Publish(ctx, awsutil.SMSInput(contact.Phone, message, h.config.SMSSenderID)); err != nil {
			sendErr := errors.NewNotificationSendFailedError(ChannelSMS, err)
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":       sendErr.Details,
				"code":        string(sendErr.Code),
				"recipientId": contact.ID,
			})
			output.Status = StatusFailed
			return output, nil
		}
		output.Channels = append(output.Channels, ChannelSMS)
	}

	if len(output.Channels) > 0 {
		output.Status = StatusSent
	}

	h.logger.Info("match notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"status":         output.Status,
		"channels":       strings.Join(output.Channels, ","),
		"runId":          input.RunID,
	})
	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, contact *repository.Contact, top []matching.Match, data map[string]interface{}) error {
	var html strings.Builder
	err := htmlBody.Execute(&html, struct {
		Name    string
		Matches []matching.Match
	}{contact.Name, top})
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	subject := renderTemplate(subjectTemplate, data)
	_, err = h.sesClient.SendEmail(ctx, awsutil.EmailInput(h.config.FromEmail, contact.Email, subject, textBody(contact.Name, top), html.String()))
	return err
}

// topMatches keeps the first n matches; callers pass them already ranked.
func topMatches(matches []matching.Match, n int) []matching.Match {
	if n <= 0 || len(matches) <= n {
		return matches
	}
	return matches[:n]
}

func summaryData(input *Input, top []matching.Match) map[string]interface{} {
	data := map[string]interface{}{
		"count":     len(input.Matches),
		"projectId": input.ProjectID,
		"runId":     input.RunID,
	}
	if len(top) > 0 {
		data["topProducer"] = top[0].Producer.Name
		data["topScore"] = top[0].MatchScore
	}
	return data
}

func textBody(name string, top []matching.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	if len(top) == 0 {
		b.WriteString("No producers matched your project this time.\n")
		return b.String()
	}
	for i, m := range top {
		fmt.Fprintf(&b, "%d. %s: %d/100, %s, %s\n   %s\n", i+1, m.Producer.Name, m.MatchScore, m.EstimatedPrice, m.Turnaround, m.Notes)
	}
	return b.String()
}

// renderTemplate fills {{key}} placeholders and drops any left unfilled.
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

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.RecordJobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.RecordJobFailed(TaskType, string(code))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
