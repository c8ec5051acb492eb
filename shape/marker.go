package shape

import (
	"html"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

const (
	DefaultIcon = "/icons/medical-facility.svg"
	absent      = "N/A"
)

var icons = map[string]string{
	"hospital":                "/icons/hospital.svg",
	"clinic":                  "/icons/clinic.svg",
	"chc":                     "/icons/community-health-centre.svg",
	"community health centre": "/icons/community-health-centre.svg",
	"pharmacy":                "/icons/pharmacy.svg",
}

// Icon picks the marker icon for a classification, case-insensitively.
func Icon(classification string) string {
	if icon, ok := icons[strings.ToLower(strings.TrimSpace(classification))]; ok {
		return icon
	}
	return DefaultIcon
}

// Caption pre-renders the marker info window. Values are HTML-escaped and
// blank values render as N/A.
func Caption(f models.Facility) string {
	var sb strings.Builder
	sb.WriteString(`<div class="facility-caption"><h3>`)
	sb.WriteString(orAbsent(f.Name))
	sb.WriteString(`</h3>`)
	for _, row := range [][2]string{
		{"Type", f.Classification},
		{"Status", f.Status},
		{"Phone", f.Phone},
		{"Email", f.Email},
		{"Hours", f.OperatingHours},
	} {
		sb.WriteString(`<p><strong>`)
		sb.WriteString(row[0])
		sb.WriteString(`:</strong> `)
		sb.WriteString(orAbsent(row[1]))
		sb.WriteString(`</p>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func orAbsent(v string) string {
	if strings.TrimSpace(v) == "" {
		return absent
	}
	return html.EscapeString(v)
}
