package pkg

import (
	"net/url"
	"strings"
)

// Intent is the pre-login action carried through the magic link so the
// client can resume it after sign-in.
type Intent struct {
	CourseID  string `json:"courseId,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Price     string `json:"price,omitempty"`
	Action    string `json:"action,omitempty"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

func (i Intent) IsZero() bool {
	return i == Intent{}
}

// Sanitized drops a returnUrl that would leave the site.
func (i Intent) Sanitized() Intent {
	if !SafeReturnURL(i.ReturnURL) {
		i.ReturnURL = ""
	}
	return i
}

// SafeReturnURL accepts same-site absolute paths only.
func SafeReturnURL(u string) bool {
	if u == "" || !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.Contains(u, `\`) {
		return false
	}
	parsed, err := url.Parse(u)
	return err == nil && parsed.Scheme == "" && parsed.Host == ""
}

func (i Intent) encode(q url.Values) {
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("courseId", i.CourseID)
	set("slug", i.Slug)
	set("price", i.Price)
	set("action", i.Action)
	set("returnUrl", i.ReturnURL)
}

// IntentFromQuery reads the intent parameters of a verify request.
func IntentFromQuery(q url.Values) Intent {
	return Intent{
		CourseID:  q.Get("courseId"),
		Slug:      q.Get("slug"),
		Price:     q.Get("price"),
		Action:    q.Get("action"),
		ReturnURL: q.Get("returnUrl"),
	}.Sanitized()
}

// BuildMagicLink renders {baseURL}/auth/verify?token=..&email=..[&intent..].
func BuildMagicLink(baseURL, token, email string, intent Intent) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	intent.Sanitized().encode(q)
	return strings.TrimRight(baseURL, "/") + "/auth/verify?" + q.Encode()
}
