package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SMS messages longer than this are split by carriers.
const maxSMSLength = 160

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg aws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input, optFns...)
}

// SMSInput builds a transactional SMS publish, truncating the message to a
// single segment. senderID is omitted when empty.
func SMSInput(phone, message, senderID string) *sns.PublishInput {
	if r := []rune(message); len(r) > maxSMSLength {
		message = string(r[:maxSMSLength-3]) + "..."
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(senderID),
		}
	}

	return &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	}
}
