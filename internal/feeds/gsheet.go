package feeds

import (
	"net/url"
	"strings"
)

// NewGoogleSheetSource reads a shared Google Sheet through its CSV export
// endpoint. The sheet must be link-visible; service-account access is not
// implemented.
func NewGoogleSheetSource(rawURL string) *HTTPSource {
	return NewHTTPSource(sheetExportURL(rawURL), nil, "", "")
}

// sheetExportURL rewrites a Google Sheets share link into its CSV export
// form, keeping the worksheet gid when the link carries one. URLs that
// already point at an export endpoint, or that are not Google Sheets links
// at all, pass through unchanged.
func sheetExportURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Host, "docs.google.com") {
		return raw
	}
	if strings.Contains(u.Path, "/export") {
		return raw
	}

	gid := u.Query().Get("gid")
	if gid == "" && strings.HasPrefix(u.Fragment, "gid=") {
		gid = strings.TrimPrefix(u.Fragment, "gid=")
	}

	// .../spreadsheets/d/<id>/edit#gid=0 -> .../spreadsheets/d/<id>/export
	if i := strings.Index(u.Path, "/edit"); i >= 0 {
		u.Path = u.Path[:i] + "/export"
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/export"
	}

	q := url.Values{"format": {"csv"}}
	if gid != "" {
		q.Set("gid", gid)
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}
