// Package share builds the links and QR codes organizers hand out to guests.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

type Links struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	WhatsApp string `json:"whatsapp"`
	Facebook string `json:"facebook"`
	X        string `json:"x"`
	Telegram string `json:"telegram"`
	LinkedIn string `json:"linkedin"`
	Email    string `json:"email"`
}

// PublicURL is the guest-facing page of an invitation
func PublicURL(baseURL, invitationID string) string {
	return strings.TrimRight(baseURL, "/") + "/rsvp/" + url.PathEscape(invitationID)
}

func shareText(inv *invitation.Invitation) string {
	text := "You're invited: " + inv.Title
	if !inv.ActivityAt.IsZero() {
		text += " on " + inv.ActivityAt.Format("Mon, 02 Jan 2006 15:04")
	}
	return text
}

// BuildLinks returns the public URL with one prefilled share link per channel
func BuildLinks(baseURL string, inv *invitation.Invitation) Links {
	link := PublicURL(baseURL, inv.ID)
	text := shareText(inv)

	q := func(pairs ...string) string {
		v := url.Values{}
		for i := 0; i+1 < len(pairs); i += 2 {
			v.Set(pairs[i], pairs[i+1])
		}
		return v.Encode()
	}

	return Links{
		URL:      link,
		Text:     text,
		WhatsApp: "https://wa.me/?" + q("text", text+" "+link),
		Facebook: "https://www.facebook.com/sharer/sharer.php?" + q("u", link),
		X:        "https://twitter.com/intent/tweet?" + q("text", text, "url", link),
		Telegram: "https://t.me/share/url?" + q("url", link, "text", text),
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?" + q("url", link),
		Email: fmt.Sprintf("mailto:?subject=%s&body=%s",
			mailtoEscape(inv.Title), mailtoEscape(text+"\n\n"+link)),
	}
}

// mailtoEscape is QueryEscape with %20 for spaces, which mail clients expect
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ClampQRSize keeps the requested edge length within bounds. Zero or
// negative sizes mean the default.
func ClampQRSize(size int) int {
	switch {
	case size <= 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}

// QRCode renders the public URL of an invitation as a PNG
func QRCode(baseURL, invitationID string, size int) ([]byte, error) {
	return qrcode.Encode(PublicURL(baseURL, invitationID), qrcode.Medium, ClampQRSize(size))
}
