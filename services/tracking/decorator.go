package tracking

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// Decorator adds an open pixel and click redirects to outgoing HTML
type Decorator struct {
	baseURL string
	secret  string
}

func NewDecorator(publicBaseURL, secret string) *Decorator {
	return &Decorator{
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		secret:  secret,
	}
}

func (d *Decorator) PixelURL(messageID string) string {
	pixel := fmt.Sprintf("%s/pixel/%s.png", d.baseURL, url.PathEscape(messageID))
	if d.secret != "" {
		pixel += "?k=" + url.QueryEscape(d.secret)
	}
	return pixel
}

func (d *Decorator) ClickURL(messageID, target string) string {
	params := url.Values{}
	params.Set("u", target)
	if d.secret != "" {
		params.Set("k", d.secret)
	}
	return fmt.Sprintf("%s/l/%s?%s", d.baseURL, url.PathEscape(messageID), params.Encode())
}

// Decorate rewrites every http(s) link through the click redirect and appends the pixel to the body
func (d *Decorator) Decorate(html, messageID string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if !IsTrackableTarget(href) {
			return
		}
		link.SetAttr("href", d.ClickURL(messageID, href))
	})

	body := doc.Find("body")
	body.AppendHtml(`<img src="" width="1" height="1" alt="" />`)
	body.ChildrenFiltered("img").Last().SetAttr("src", d.PixelURL(messageID))

	out, err := doc.Html()
	if err != nil {
		return "", errors.Wrap(err, "render html")
	}
	return out, nil
}

// IsTrackableTarget reports whether a redirect target is an absolute http(s) URL
func IsTrackableTarget(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
