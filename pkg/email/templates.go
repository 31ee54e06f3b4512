package email

import "html/template"

// Şablonlar gömülüdür, harici dosya gerekmez
var templateSources = map[string]string{
	"welcome.html": `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your CUSE Rentals account is ready. Post a listing whenever you are.</p>
</div>`,

	"listing_approved.html": `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Good news, {{.Name}}!</h2>
  <p>Your listing at <strong>{{.Address}}</strong> has been approved and is now live.</p>
  <p><a href="{{.ListingURL}}">View your listing</a></p>
</div>`,

	"changes_requested.html": `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Hi {{.Name}},</h2>
  <p>Our team reviewed your listing at <strong>{{.Address}}</strong> and needs a few changes before it can go live:</p>
  <blockquote style="border-left:3px solid #ccc;padding-left:12px;color:#555">{{.Feedback}}</blockquote>
  <p><a href="{{.EditURL}}">Edit your listing</a> and resubmit when ready.</p>
</div>`,

	"password_reset.html": `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Hi {{.Name}},</h2>
  <p>We received a request to reset your password. The link below is valid for 24 hours.</p>
  <p><a href="{{.ResetLink}}">Reset your password</a></p>
  <p>If you didn't request this, you can ignore this email.</p>
</div>`,
}

func loadTemplates() (*template.Template, error) {
	root := template.New("emails")
	for name, body := range templateSources {
		if _, err := root.New(name).Parse(body); err != nil {
			return nil, err
		}
	}
	return root, nil
}
