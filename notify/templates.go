package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindPrizeAwarded: {
		subject: "🏆 You reached the monthly target",
		body: template.Must(template.New("prize_awarded").Parse(`
<h2>Congratulations, {{.Name}}!</h2>
<p>You earned <strong>{{.Data.earnings}}</strong> this month and reached the goal of {{.Data.goalAmount}}.</p>
<p>Your prize: <strong>{{.Data.prize}}</strong></p>`)),
	},
	KindKYCApproved: {
		subject: "✅ Your KYC has been approved",
		body: template.Must(template.New("kyc_approved").Parse(`
<h2>Hello, {{.Name}}</h2>
<p>Your identity documents were verified. Withdrawals are now enabled on your account.</p>`)),
	},
	KindKYCRejected: {
		subject: "❌ Your KYC was not approved",
		body: template.Must(template.New("kyc_rejected").Parse(`
<h2>Hello, {{.Name}}</h2>
<p>We could not verify your documents.</p>
{{if .Data.reason}}<p>Reason: {{.Data.reason}}</p>{{end}}
<p>Please submit them again from your dashboard.</p>`)),
	},
	KindOrderApproved: {
		subject: "🎉 Your order is approved",
		body: template.Must(template.New("order_approved").Parse(`
<h2>Welcome aboard, {{.Name}}!</h2>
<p>Your payment for <strong>{{.Data.packageName}}</strong> was confirmed and your courses are unlocked.</p>`)),
	},
	KindWithdrawalApproved: {
		subject: "💸 Your withdrawal was sent",
		body: template.Must(template.New("withdrawal_approved").Parse(`
<h2>Hello, {{.Name}}</h2>
<p>We sent <strong>{{.Data.amount}}</strong> via {{.Data.method}} to {{.Data.account}}.</p>`)),
	},
	KindUserDeleted: {
		subject: "Your account was removed",
		body: template.Must(template.New("user_deleted").Parse(`
<h2>Hello, {{.Name}}</h2>
<p>Your account and its data were removed by an administrator.</p>`)),
	},
}

// Render fills Subject and Body from the kind's template unless the caller
// already set them.
func Render(msg Message) (Message, error) {
	tpl, ok := templates[msg.Kind]
	if !ok {
		if msg.Subject == "" && msg.Body == "" {
			return msg, fmt.Errorf("notify: no template for %q", msg.Kind)
		}
		return msg, nil
	}
	if msg.Subject == "" {
		msg.Subject = tpl.subject
	}
	if msg.Body == "" {
		var buf bytes.Buffer
		err := tpl.body.Execute(&buf, struct {
			Name string
			Data map[string]any
		}{Name: msg.ToName, Data: msg.Data})
		if err != nil {
			return msg, fmt.Errorf("notify: render %s: %w", msg.Kind, err)
		}
		msg.Body = buf.String()
	}
	return msg, nil
}
