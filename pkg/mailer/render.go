package mailer

import (
	"errors"

	tpl "github.com/oksasatya/vidtube-accounts/pkg/mailer/templates"
)

// ErrEmptyJob means the job names no template and carries no raw content.
var ErrEmptyJob = errors.New("email job has neither template nor subject with body")

// Render produces the subject and bodies for the job, from its template when set.
func (j *EmailJob) Render() (subject, text, html string, err error) {
	j.Normalize()
	if j.To == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return "", "", "", ErrEmptyJob
		}
		return j.Subject, j.Text, j.HTML, nil
	}
	return tpl.Render(j.Template, j.Data)
}
