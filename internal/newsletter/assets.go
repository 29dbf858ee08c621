package newsletter

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Assets holds the embeddable images shared by every newsletter, each as
// a base64 data URI. Missing files yield empty URIs; the templates render
// fine without them.
type Assets struct {
	Logo          string
	Flyer         string
	InstagramIcon string
	TikTokIcon    string
	XIcon         string
	WhatsAppIcon  string
}

// LoadAssets reads the newsletter images from dir. It never fails: every
// image is optional.
func LoadAssets(dir string) Assets {
	return Assets{
		Logo:          dataURI(filepath.Join(dir, "logo.png")),
		Flyer:         dataURI(filepath.Join(dir, "flyer.png")),
		InstagramIcon: dataURI(filepath.Join(dir, "instagram.png")),
		TikTokIcon:    dataURI(filepath.Join(dir, "tiktok.png")),
		XIcon:         dataURI(filepath.Join(dir, "twitter.png")),
		WhatsAppIcon:  dataURI(filepath.Join(dir, "whatsapp.png")),
	}
}

func dataURI(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))
}

// QRDataURI renders a QR code for the URL as a PNG data URI. Returns ""
// for an empty URL or when encoding fails, so event templates degrade to
// a layout without the ticket code.
func QRDataURI(url string) string {
	if url == "" {
		return ""
	}
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
