package mailer

const (
	TemplateClassCancelled = "class-cancelled"
	TemplateInvite         = "invite"
	TemplatePasswordReset  = "password-reset"
)

// ClassCancelledData feeds the class-cancelled template.
type ClassCancelledData struct {
	ClassName  string
	Date       string
	StartTime  string
	EndTime    string
	Instructor string
	Reason     string
}

const classCancelledText = `Hi,

Unfortunately your class has been cancelled.

  Class:      {{.ClassName}}
  Date:       {{.Date}}
  Time:       {{.StartTime}} - {{.EndTime}}
  Instructor: {{.Instructor}}
{{- if .Reason}}
  Reason:     {{.Reason}}
{{- end}}

We are sorry for the inconvenience. Please book another session in the app.
`

const classCancelledHTML = `<p>Hi,</p>
<p>Unfortunately your class has been cancelled.</p>
<table>
  <tr><td><b>Class</b></td><td>{{.ClassName}}</td></tr>
  <tr><td><b>Date</b></td><td>{{.Date}}</td></tr>
  <tr><td><b>Time</b></td><td>{{.StartTime}} - {{.EndTime}}</td></tr>
  <tr><td><b>Instructor</b></td><td>{{.Instructor}}</td></tr>
{{- if .Reason}}
  <tr><td><b>Reason</b></td><td>{{.Reason}}</td></tr>
{{- end}}
</table>
<p>We are sorry for the inconvenience. Please book another session in the app.</p>
`

// InviteData feeds the invite template.
type InviteData struct {
	BusinessName string
	Link         string
}

const inviteText = `Hi,

You have been invited to join {{.BusinessName}}.

Open this link to set up your account:

  {{.Link}}

If you were not expecting this invitation you can ignore this email.
`

// PasswordResetData feeds the password-reset template.
type PasswordResetData struct {
	Link string
}

const passwordResetText = `Hi,

A password reset was requested for your account. Open this link to choose a
new password:

  {{.Link}}

If you did not request a reset you can ignore this email.
`
