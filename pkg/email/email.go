// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type ListingApprovedData struct {
	Name       string
	Address    string
	ListingURL string
}

type ChangesRequestedData struct {
	Name     string
	Address  string
	Feedback string
	EditURL  string
}

type PasswordResetData struct {
	Name      string
	ResetLink string
}

func NewEmailService(apiKey, from string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if from == "" {
		from = "CUSE Rentals <noreply@cuserentals.com>"
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      from,
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	log.Printf("Resend API response: Status: %d, Body: %s", resp.StatusCode, string(respBody))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to CUSE Rentals! 🎉", "welcome.html", data)
}

func (s *EmailService) SendListingApprovedEmail(email, name, address string, listingID uint) error {
	data := ListingApprovedData{
		Name:       name,
		Address:    address,
		ListingURL: fmt.Sprintf("https://cuserentals.com/listings/%d", listingID),
	}
	return s.sendTemplateEmail(email, "Your Listing Is Live! 🎉", "listing_approved.html", data)
}

func (s *EmailService) SendChangesRequestedEmail(email, name, address, feedback string, listingID uint) error {
	data := ChangesRequestedData{
		Name:     name,
		Address:  address,
		Feedback: feedback,
		EditURL:  fmt.Sprintf("https://cuserentals.com/my-listings/%d/edit", listingID),
	}
	return s.sendTemplateEmail(email, "Your Listing Needs Changes", "changes_requested.html", data)
}

func (s *EmailService) SendPasswordResetEmail(email, name, code string) error {
	data := PasswordResetData{
		Name:      name,
		ResetLink: fmt.Sprintf("https://cuserentals.com/reset-password?code=%s", code),
	}
	return s.sendTemplateEmail(email, "Reset Your Password 🔒", "password_reset.html", data)
}
