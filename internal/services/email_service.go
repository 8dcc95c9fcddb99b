package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"awning-admin-api/internal/config"
	"awning-admin-api/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles email sending via SendGrid
type EmailService struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	return &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    sendgrid.NewSendClient(cfg.APIKey),
	}
}

// SendDocumentEmail sends a quote or invoice to a customer with the rendered
// PDF attached
func (s *EmailService) SendDocumentEmail(toEmail string, doc *models.Document, pdfData []byte) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(doc.CustomerName, toEmail)

	kind := "Quotation"
	if doc.Kind == models.DocumentInvoice {
		kind = "Invoice"
	}
	subject := fmt.Sprintf("%s %s", kind, doc.Number)

	htmlContent := s.buildDocumentEmailHTML(kind, doc)
	plainTextContent := s.buildDocumentEmailText(kind, doc)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	if len(pdfData) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(pdfData))
		attachment.SetType("application/pdf")
		attachment.SetFilename(DocumentFilename(doc))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

// SendFollowUpEmail sends an enquiry follow-up reminder to the sales inbox
func (s *EmailService) SendFollowUpEmail(toEmail string, followUps []models.FollowUp) error {
	if len(followUps) == 0 {
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	subject := fmt.Sprintf("%d enquiries need a follow-up", len(followUps))

	var text bytes.Buffer
	text.WriteString("The following enquiries have gone quiet:\n\n")
	for _, f := range followUps {
		text.WriteString(fmt.Sprintf("- %s (workflow %d): %s\n", f.CustomerName, f.WorkflowID, f.Reason))
	}

	message := mail.NewSingleEmail(from, subject, to, text.String(), "")

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send follow-up email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// buildDocumentEmailHTML builds the HTML body for a document email
func (s *EmailService) buildDocumentEmailHTML(kind string, doc *models.Document) string {
	var html bytes.Buffer

	html.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
        .total-box { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #0066cc; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1 style="margin: 0;">` + kind + ` ` + doc.Number + `</h1>
    </div>
    <div class="content">
        <p>Dear ` + doc.CustomerName + `,</p>
        <p>Please find your ` + kind + ` attached as a PDF document.</p>
        <div class="total-box">
            <h3 style="margin-top: 0; color: #0066cc;">Total</h3>
            <p>` + fmt.Sprintf("%.2f", doc.Totals.GrandTotal) + `</p>
        </div>
        <p>Best regards,<br>` + s.fromName + `</p>
    </div>
    <div class="footer">
        <p>This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>`)

	return html.String()
}

// buildDocumentEmailText builds the plain text body for a document email
func (s *EmailService) buildDocumentEmailText(kind string, doc *models.Document) string {
	return fmt.Sprintf(`%s %s

Dear %s,

Please find your %s attached as a PDF document.

Total: %.2f

Best regards,
%s

---
This is an automated email. Please do not reply.
`, kind, doc.Number, doc.CustomerName, kind, doc.Totals.GrandTotal, s.fromName)
}
