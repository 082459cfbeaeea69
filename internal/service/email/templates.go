package email

// Templates are parsed together; each content template renders inside "layout".

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #059669, #047857); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; font-size: 12px; color: #6b7280; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px; }
        .info-box { background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .info-row { padding: 6px 0; border-bottom: 1px solid #e5e7eb; }
        .info-row:last-child { border-bottom: none; }
        .info-label { color: #6b7280; }
        .button { display: inline-block; background: #059669; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">EV charging, booked ahead</p>
    </div>
    <div class="content">
        {{template "content" .}}
    </div>
    <div class="footer">
        <p>This is an automated message. Please do not reply to this email.</p>
        <p>You can turn off email notifications in your profile settings.</p>
    </div>
</body>
</html>{{end}}`

const welcomeTemplate = `{{define "content"}}
        <h2>Welcome, {{.UserName}}!</h2>
        <p>Your {{.AppName}} account is ready.</p>
        {{if .IsStationOwner}}
        <p>Register your charging station and its chargers. Once our team approves it, drivers can start booking slots.</p>
        {{else}}
        <p>Add your vehicle, find an approved station near you and book a charging slot in advance.</p>
        {{end}}
        <a href="{{.BaseURL}}" class="button">Open {{.AppName}}</a>
{{end}}`

const notificationTemplate = `{{define "content"}}
        <h2>{{.Title}}</h2>
        <p>Hi {{.UserName}},</p>
        <p>{{.Body}}</p>
        <a href="{{.BaseURL}}/notifications" class="button">View in {{.AppName}}</a>
{{end}}`
