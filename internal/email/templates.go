package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const verificationSubject = "Vérifiez votre adresse email - ImmoApp"

var verificationHTML = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #2563eb; text-align: center;">Vérification de votre email</h1>
  <p style="font-size: 16px; line-height: 1.5; color: #4b5563;">
    Merci de vous être inscrit sur ImmoApp ! Pour finaliser votre inscription,
    veuillez cliquer sur le bouton ci-dessous :
  </p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold;">Vérifier mon email</a>
  </div>
  <p style="font-size: 14px; color: #6b7280;">Ce lien expire dans {{.Expiry}}.</p>
</div>
`))

type verificationData struct {
	Link   string
	Expiry string
}

func renderVerificationHTML(link string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	if err := verificationHTML.Execute(&buf, verificationData{Link: link, Expiry: expiryLabel(ttl)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderVerificationText(link string, ttl time.Duration) string {
	return "Merci de vous être inscrit sur ImmoApp !\n" +
		"Pour finaliser votre inscription, ouvrez le lien suivant :\n" +
		link + "\n" +
		"Ce lien expire dans " + expiryLabel(ttl) + ".\n"
}

// expiryLabel expresa la vigencia del enlace en horas o minutos.
func expiryLabel(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = defaultLinkTTL
	}
	if ttl >= time.Hour && ttl%time.Hour == 0 {
		return plural(int(ttl/time.Hour), "heure")
	}
	minutes := int(ttl / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return plural(minutes, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
