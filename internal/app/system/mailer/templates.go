// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"text/tabwriter"
)

// RegistrationReceivedData holds data for the application acknowledgment.
type RegistrationReceivedData struct {
	SiteName     string
	Name         string
	SupportEmail string
}

// BuildRegistrationReceived creates the acknowledgment sent after a
// successful application.
func BuildRegistrationReceived(data RegistrationReceivedData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Thank you for registering with %s", data.SiteName),
		TextBody: buildRegistrationReceivedText(data),
		HTMLBody: render(registrationReceivedTmpl, data),
	}
}

func buildRegistrationReceivedText(data RegistrationReceivedData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dear %s,\n\n", data.Name)
	fmt.Fprintf(&buf, "Thank you for applying for membership with %s.\n\n", data.SiteName)
	buf.WriteString("We have received your application and our team will review it. If it is approved you will receive a second email with your member ID, unique ID and login credentials.\n\n")
	if data.SupportEmail != "" {
		fmt.Fprintf(&buf, "Questions? Write to %s.\n\n", data.SupportEmail)
	}
	buf.WriteString("Warm regards,\nMembership Team\n")
	return buf.String()
}

// MemberCredentialsData holds data for the approval email.
type MemberCredentialsData struct {
	SiteName     string
	Name         string
	MemberID     string
	UniqueID     string
	Username     string
	Password     string
	LoginURL     string
	SupportEmail string
}

// BuildMemberCredentials creates the email carrying a new member's
// identifiers and temporary password.
func BuildMemberCredentials(data MemberCredentialsData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Your %s login credentials", data.SiteName),
		TextBody: buildMemberCredentialsText(data),
		HTMLBody: render(memberCredentialsTmpl, data),
	}
}

func buildMemberCredentialsText(data MemberCredentialsData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dear %s,\n\n", data.Name)
	fmt.Fprintf(&buf, "Your membership with %s has been approved. Your login details:\n\n", data.SiteName)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Member ID:\t%s\n", data.MemberID)
	fmt.Fprintf(tw, "  Unique ID:\t%s\n", data.UniqueID)
	fmt.Fprintf(tw, "  Username:\t%s\n", data.Username)
	fmt.Fprintf(tw, "  Password:\t%s\n", data.Password)
	fmt.Fprintf(tw, "  Login:\t%s\n", data.LoginURL)
	_ = tw.Flush()

	buf.WriteString("\nPlease sign in and change your password at your earliest convenience.\n\n")
	if data.SupportEmail != "" {
		fmt.Fprintf(&buf, "Need help? Write to %s.\n\n", data.SupportEmail)
	}
	buf.WriteString("Warm regards,\nMembership Team\n")
	return buf.String()
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	_ = tmpl.ExecuteTemplate(&buf, "layout", data)
	return buf.String()
}

// page pairs the shared layout with a content block.
func page(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layoutHTML))
	return template.Must(t.New("content").Parse(content))
}

var (
	registrationReceivedTmpl = page(registrationReceivedHTML)
	memberCredentialsTmpl    = page(memberCredentialsHTML)
)

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 560px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #1e3a8a;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 15px; color: #374151; line-height: 1.6;">
              {{template "content" .}}
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                {{if .SupportEmail}}Questions? <a href="mailto:{{.SupportEmail}}" style="color: #1e3a8a;">{{.SupportEmail}}</a>{{else}}Membership Team{{end}}
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const registrationReceivedHTML = `<p style="margin: 0 0 16px;">Dear {{.Name}},</p>
<p style="margin: 0 0 16px;">Thank you for applying for membership with {{.SiteName}}. We have received your application and our team will review it.</p>
<p style="margin: 0;">If it is approved you will receive a second email with your member ID, unique ID and login credentials.</p>`

const memberCredentialsHTML = `<p style="margin: 0 0 16px;">Dear {{.Name}},</p>
<p style="margin: 0 0 16px;">Your membership has been approved. Your login details:</p>
<table role="presentation" cellspacing="0" cellpadding="0" style="width: 100%; background-color: #f3f4f6; border-radius: 8px; margin-bottom: 24px;">
  <tr><td style="padding: 8px 16px; color: #6b7280;">Member ID</td><td style="padding: 8px 16px; font-weight: 600;">{{.MemberID}}</td></tr>
  <tr><td style="padding: 8px 16px; color: #6b7280;">Unique ID</td><td style="padding: 8px 16px; font-weight: 600;">{{.UniqueID}}</td></tr>
  <tr><td style="padding: 8px 16px; color: #6b7280;">Username</td><td style="padding: 8px 16px; font-weight: 600;">{{.Username}}</td></tr>
  <tr><td style="padding: 8px 16px; color: #6b7280;">Password</td><td style="padding: 8px 16px; font-weight: 600; font-family: 'Courier New', monospace;">{{.Password}}</td></tr>
</table>
<table role="presentation" width="100%" cellspacing="0" cellpadding="0">
  <tr>
    <td align="center">
      <a href="{{.LoginURL}}" style="display: inline-block; padding: 14px 32px; background-color: #1e3a8a; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">Sign In</a>
    </td>
  </tr>
</table>
<p style="margin: 24px 0 0; font-size: 13px; color: #6b7280; text-align: center;">Please change your password after your first sign-in.</p>`
