package notifications

import (
	"bytes"
	"html/template"
)

const otpEmailSubject = "Eazy Career OTP"

var otpEmailTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif;">
    <p>Hi {{.Name}},</p>
    <p>Your one-time password is:</p>
    <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.OTP}}</p>
    <p>The code expires in {{.ExpiresIn}}. Do not share it with anyone.</p>
  </body>
</html>
`))

// OTPEmail renders the subject and HTML body of a one-time password email.
func OTPEmail(name, otp, expiresIn string) (subject, body string, err error) {
	var buf bytes.Buffer
	err = otpEmailTemplate.Execute(&buf, struct {
		Name, OTP, ExpiresIn string
	}{name, otp, expiresIn})
	if err != nil {
		return "", "", err
	}
	return otpEmailSubject, buf.String(), nil
}
