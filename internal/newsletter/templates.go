package newsletter

import (
	"fmt"
	"strings"
)

// announcementHTML returns the HTML body for an announcement newsletter.
func announcementHTML(p Payload, a Assets, appName, unsubscribeURL string, year int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;background-color:#f4f5f7;">
<table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:40px 0;">
<tr><td align="center">
<table width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;box-shadow:0 2px 8px rgba(0,0,0,0.08);">
  %s
  <tr><td style="padding:32px 40px 16px;text-align:center;">
    <h1 style="margin:0;font-size:26px;color:#1a1a2e;">%s</h1>
  </td></tr>
  %s
  <tr><td style="padding:0 40px;">
    <p style="margin:0 0 24px;font-size:15px;color:#4a4a68;line-height:1.7;white-space:pre-line;">%s</p>
  </td></tr>
  %s
  %s
  %s
  %s
</table>
</td></tr>
</table>
</body>
</html>`,
		p.Title,
		logoRow(a),
		p.Title,
		highlightRow(p),
		p.Content,
		ctaRow(p),
		flyerRow(a),
		socialRow(a),
		footerRow(appName, unsubscribeURL, year),
	)
}

// eventHTML returns the HTML body for an event newsletter. Event details
// and the ticket QR sit between the content and the call to action.
func eventHTML(p Payload, a Assets, appName, unsubscribeURL string, year int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;background-color:#f4f5f7;">
<table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:40px 0;">
<tr><td align="center">
<table width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;box-shadow:0 2px 8px rgba(0,0,0,0.08);">
  %s
  <tr><td style="padding:32px 40px 16px;text-align:center;">
    <h1 style="margin:0;font-size:26px;color:#1a1a2e;">%s</h1>
  </td></tr>
  %s
  <tr><td style="padding:0 40px;">
    <p style="margin:0 0 24px;font-size:15px;color:#4a4a68;line-height:1.7;white-space:pre-line;">%s</p>
  </td></tr>
  %s
  %s
  %s
  %s
  %s
  %s
</table>
</td></tr>
</table>
</body>
</html>`,
		p.Title,
		logoRow(a),
		p.Title,
		highlightRow(p),
		p.Content,
		eventDetailsRow(p),
		qrRow(QRDataURI(p.CTAURL)),
		ctaRow(p),
		flyerRow(a),
		socialRow(a),
		footerRow(appName, unsubscribeURL, year),
	)
}

func logoRow(a Assets) string {
	if a.Logo == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:32px 40px 0;text-align:center;">
    <img src="%s" alt="" width="72" style="display:inline-block;">
  </td></tr>`, a.Logo)
}

func highlightRow(p Payload) string {
	if p.HighlightText == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:0 40px 16px;text-align:center;">
    <div style="display:inline-block;background-color:#fff4e5;border-left:4px solid #ff9800;border-radius:4px;padding:12px 24px;">
      <span style="font-size:15px;font-weight:600;color:#b35900;">%s</span>
    </div>
  </td></tr>`, p.HighlightText)
}

func ctaRow(p Payload) string {
	if p.CTAText == "" || p.CTAURL == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:8px 40px 32px;text-align:center;">
    <a href="%s" style="display:inline-block;background-color:#6c63ff;color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;padding:14px 36px;border-radius:6px;">%s</a>
  </td></tr>`, p.CTAURL, p.CTAText)
}

func eventDetailsRow(p Payload) string {
	var rows []string
	if p.EventDate != "" {
		rows = append(rows, eventDetail("Date", p.EventDate))
	}
	if p.EventTime != "" {
		rows = append(rows, eventDetail("Time", p.EventTime))
	}
	if p.EventLocation != "" {
		rows = append(rows, eventDetail("Location", p.EventLocation))
	}
	if len(rows) == 0 {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:0 40px 24px;">
    <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f0f0ff;border-radius:8px;padding:8px 0;">
%s
    </table>
  </td></tr>`, strings.Join(rows, "\n"))
}

func eventDetail(label, value string) string {
	return fmt.Sprintf(`      <tr>
        <td style="padding:8px 24px;font-size:13px;font-weight:600;color:#6c63ff;width:90px;">%s</td>
        <td style="padding:8px 24px 8px 0;font-size:14px;color:#1a1a2e;">%s</td>
      </tr>`, label, value)
}

func qrRow(qrDataURI string) string {
	if qrDataURI == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:0 40px 24px;text-align:center;">
    <img src="%s" alt="Ticket QR code" width="160" style="display:inline-block;border:1px solid #eeeef2;border-radius:8px;">
    <p style="margin:8px 0 0;font-size:12px;color:#8888a0;">Scan to get your tickets</p>
  </td></tr>`, qrDataURI)
}

func flyerRow(a Assets) string {
	if a.Flyer == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:0 40px 24px;text-align:center;">
    <img src="%s" alt="" width="480" style="display:inline-block;max-width:100%%;border-radius:8px;">
  </td></tr>`, a.Flyer)
}

func socialRow(a Assets) string {
	var icons []string
	for _, icon := range []string{a.InstagramIcon, a.TikTokIcon, a.XIcon, a.WhatsAppIcon} {
		if icon == "" {
			continue
		}
		icons = append(icons, fmt.Sprintf(`<img src="%s" alt="" width="24" style="display:inline-block;margin:0 6px;">`, icon))
	}
	if len(icons) == 0 {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:0 40px 16px;text-align:center;">
    %s
  </td></tr>`, strings.Join(icons, "\n    "))
}

func footerRow(appName, unsubscribeURL string, year int) string {
	return fmt.Sprintf(`<tr><td style="padding:16px 40px;background-color:#f9f9fc;border-top:1px solid #eeeef2;">
    <p style="margin:0 0 4px;font-size:12px;color:#aaaabc;text-align:center;">
      &copy; %d %s &mdash; This is an automated message, please do not reply.
    </p>
    <p style="margin:0;font-size:12px;color:#aaaabc;text-align:center;">
      <a href="%s" style="color:#8888a0;">Unsubscribe</a>
    </p>
  </td></tr>`, year, appName, unsubscribeURL)
}
