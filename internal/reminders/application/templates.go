package application

import (
	"errors"
	"strings"
	"text/template"

	"rental-cloud/internal/notify"
)

var reminderTemplates = template.Must(template.New("reminders").Parse(`
{{- define "payment.due_soon" -}}
Hi! Your {{.Type}} payment{{if .Amount}} of {{printf "%.2f" .Amount}}{{end}} for {{.Place}} is due on {{.Due}} (in 2 days).
{{- end -}}
{{- define "payment.due_today" -}}
Reminder: your {{.Type}} payment{{if .Amount}} of {{printf "%.2f" .Amount}}{{end}} for {{.Place}} is due today, {{.Due}}.
{{- end -}}
`))

type reminderView struct {
	Type   string
	Amount float64
	Place  string
	Due    string
}

// RenderReminder renders the notice body for a staging transition.
func RenderReminder(kind string, candidate Candidate) (string, error) {
	switch kind {
	case notify.KindPaymentDueSoon, notify.KindPaymentDueToday:
	default:
		return "", errors.New("reminder: unknown template " + kind)
	}
	place := candidate.LeaseNickname
	if place == "" {
		place = "your unit"
	}
	view := reminderView{
		Type:   strings.ToLower(strings.ReplaceAll(string(candidate.Type), "_", " ")),
		Amount: candidate.Amount,
		Place:  place,
		Due:    candidate.DueDate.Format("January 2, 2006"),
	}
	var sb strings.Builder
	if err := reminderTemplates.ExecuteTemplate(&sb, kind, view); err != nil {
		return "", err
	}
	return sb.String(), nil
}
