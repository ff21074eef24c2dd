package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/step-sensor/internal/mqtt"
	"github.com/sweeney/step-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Steps Tracker</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.count { font-size: 3em; font-weight: bold; }
.running { color: green; font-weight: bold; }
.sitting { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
button { font-family: monospace; font-size: 1.1em; padding: 4px 16px; }
</style>
</head>
<body>
<h1>Steps Tracker</h1>

<p id="steps" class="count">{{.Steps}}</p>
<p>Estimated Calories Burnt: <span id="calories">{{.CaloriesText}}</span> calories</p>
<p id="activity" class="{{.Activity}}">{{.Activity}}</p>
<form method="post" action="/reset"><button type="submit">Reset</button></form>

<h2>Detector</h2>
<table>
<tr><th>Cooldown</th><td>{{if .CooldownActive}}active{{else}}idle{{end}}</td></tr>
<tr><th>Last step</th><td>{{if .LastStep.IsZero}}never{{else}}{{.LastStep.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
<tr><th>Accepted samples</th><td>{{.Counts.Accepted}}</td></tr>
<tr><th>Rejected samples</th><td>{{.Counts.TotalRejected}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Sensor</th><td class="{{if .SensorAvailable}}connected{{else}}disconnected{{end}}">{{.SensorName}} ({{if .SensorAvailable}}available{{else}}unavailable{{end}})</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Threshold</th><td>{{.Config.ThresholdG}}g</td></tr>
<tr><th>Min gap</th><td>{{.Config.MinGapMs}}ms</td></tr>
<tr><th>Cooldown</th><td>{{.Config.CooldownMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template needs fields, not methods with computed values.
	data := struct {
		status.Snapshot
		Uptime       time.Duration
		CaloriesText string
		Activity     string
	}{
		Snapshot:     snap,
		Uptime:       snap.Uptime(),
		CaloriesText: mqtt.FormatCalories(snap.Calories()),
		Activity:     status.Activity(snap),
	}
	indexTmpl.Execute(w, data)
}
