// Package newsletter renders announcement and event newsletters as
// self-contained HTML (images inlined as data URIs) plus a plain-text
// alternative. All functions are pure apart from asset loading.
package newsletter

import (
	"fmt"
	"net/url"
	"strings"
)

// Renderer binds the shared assets and app identity for rendering.
type Renderer struct {
	assets             Assets
	appName            string
	unsubscribeBaseURL string
}

// NewRenderer loads assets from imagesDir and returns a Renderer.
func NewRenderer(appName, imagesDir, unsubscribeBaseURL string) *Renderer {
	return &Renderer{
		assets:             LoadAssets(imagesDir),
		appName:            appName,
		unsubscribeBaseURL: unsubscribeBaseURL,
	}
}

// RenderHTML renders the newsletter HTML for one recipient.
func (r *Renderer) RenderHTML(p Payload, recipient string, year int) string {
	unsub := r.UnsubscribeURL(recipient)
	if p.Template == TemplateEvent {
		return eventHTML(p, r.assets, r.appName, unsub, year)
	}
	return announcementHTML(p, r.assets, r.appName, unsub, year)
}

// PlainText derives the text alternative from the structured payload
// fields rather than stripping the HTML.
func (r *Renderer) PlainText(p Payload, senderName string, year int) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n\n")
	if p.HighlightText != "" {
		b.WriteString(p.HighlightText)
		b.WriteString("\n\n")
	}
	b.WriteString(p.Content)
	b.WriteString("\n")
	if p.Template == TemplateEvent {
		if p.EventDate != "" {
			fmt.Fprintf(&b, "\nDate: %s", p.EventDate)
		}
		if p.EventTime != "" {
			fmt.Fprintf(&b, "\nTime: %s", p.EventTime)
		}
		if p.EventLocation != "" {
			fmt.Fprintf(&b, "\nLocation: %s", p.EventLocation)
		}
		b.WriteString("\n")
	}
	if p.CTAText != "" && p.CTAURL != "" {
		fmt.Fprintf(&b, "\n%s: %s\n", p.CTAText, p.CTAURL)
	}
	if senderName != "" {
		fmt.Fprintf(&b, "\n- %s", senderName)
	}
	fmt.Fprintf(&b, "\n\n(c) %d %s", year, r.appName)
	return b.String()
}

// UnsubscribeURL returns the per-recipient unsubscribe link.
func (r *Renderer) UnsubscribeURL(recipient string) string {
	if r.unsubscribeBaseURL == "" {
		return "#"
	}
	return r.unsubscribeBaseURL + "?email=" + url.QueryEscape(recipient)
}

// FormatFrom builds the From header. The display-name form is used only
// when senderName is non-empty and is not itself an address.
func FormatFrom(senderName, senderEmail string) string {
	if senderName != "" && !strings.Contains(senderName, "@") {
		return fmt.Sprintf("%s <%s>", senderName, senderEmail)
	}
	return senderEmail
}
