package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"ims/internal/domain"
	"ims/internal/normalize"
	"ims/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendInvoicePublished(ctx context.Context, inv *domain.Invoice) error {
	if inv.ToEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Invoice published: %s", inv.Title)
	htmlBody := buildInvoicePublishedHTML(inv)
	textBody := fmt.Sprintf(
		"Invoice %s has been published.\n\nProject: %s\nLocation: %s\nInvoice date: %s\nBasic amount: %.2f\nNet payable: %.2f\nStatus: %s\n",
		inv.Title, inv.Project, inv.Location,
		normalize.FormatDate(inv.InvoiceDate),
		inv.BasicAmount, inv.NetPayableAmount, inv.Status)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{inv.ToEmail},
			CcAddresses: inv.CCEmails,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildInvoicePublishedHTML(inv *domain.Invoice) string {
	fileRow := ""
	if inv.FileURL != "" {
		fileRow = fmt.Sprintf(`  <p><a href="%s" style="color: #4F46E5;">View attached invoice</a></p>
`, inv.FileURL)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice published</h2>
  <p>Invoice <strong>%s</strong> has been published.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px 12px; color: #666;">Project</td><td style="padding: 6px 12px;">%s</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Location</td><td style="padding: 6px 12px;">%s</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Invoice date</td><td style="padding: 6px 12px;">%s</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Basic amount</td><td style="padding: 6px 12px;">%.2f</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Net payable</td><td style="padding: 6px 12px;">%.2f</td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Status</td><td style="padding: 6px 12px;">%s</td></tr>
  </table>
%s  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Invoice Management System</p>
</body>
</html>`, inv.Title, inv.Project, inv.Location,
		normalize.FormatDate(inv.InvoiceDate),
		inv.BasicAmount, inv.NetPayableAmount, inv.Status, fileRow)
}
