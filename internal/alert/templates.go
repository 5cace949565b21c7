package alert

import (
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"flighttracker-backend/internal/flights"
)

type templateData struct {
	Route      string
	Origin     string
	Dest       string
	Date       string
	Current    string
	Previous   string
	Target     string
	Magnitude  string
	ObservedAt string
}

func (d Dispatcher) templateData(event flights.Event) templateData {
	data := templateData{
		Route:      event.Route.String(),
		Origin:     event.Route.Origin.String(),
		Dest:       event.Route.Destination.String(),
		Date:       event.Route.DepartureDate.Format(flights.DateLayout),
		Current:    d.FormatAmount(event.Current),
		Magnitude:  d.FormatAmount(event.Magnitude),
		ObservedAt: event.ObservedAt.Format("2006-01-02 15:04 MST"),
	}
	if event.Previous.Valid {
		data.Previous = d.FormatAmount(event.Previous.Decimal)
	}
	if event.Target.Valid {
		data.Target = d.FormatAmount(event.Target.Decimal)
	}
	return data
}

func subject(event flights.Event) string {
	switch event.Kind {
	case flights.EventDrop:
		return fmt.Sprintf("Price drop: %s → %s", event.Route.Origin, event.Route.Destination)
	case flights.EventTargetReached:
		return fmt.Sprintf("Target price reached: %s → %s", event.Route.Origin, event.Route.Destination)
	}
	return fmt.Sprintf("Flight price update: %s → %s", event.Route.Origin, event.Route.Destination)
}

const textDrop = `{{define "drop"}}The price for your flight {{.Origin}} → {{.Dest}} on {{.Date}} dropped.

Previous price: {{.Previous}}
Current price:  {{.Current}}
You save:       {{.Magnitude}}

Observed at {{.ObservedAt}}.
{{end}}`

const textTarget = `{{define "target_reached"}}The price for your flight {{.Origin}} → {{.Dest}} on {{.Date}} reached your target.

Target price:  {{.Target}}
Current price: {{.Current}}
Below target:  {{.Magnitude}}

Observed at {{.ObservedAt}}.
{{end}}`

const htmlDrop = `{{define "drop"}}<html><body>
<h2>Price drop: {{.Origin}} → {{.Dest}}</h2>
<p>The price for your flight on <b>{{.Date}}</b> dropped.</p>
<table>
<tr><td>Previous price</td><td>{{.Previous}}</td></tr>
<tr><td>Current price</td><td><b>{{.Current}}</b></td></tr>
<tr><td>You save</td><td>{{.Magnitude}}</td></tr>
</table>
<p><small>Observed at {{.ObservedAt}}.</small></p>
</body></html>{{end}}`

const htmlTarget = `{{define "target_reached"}}<html><body>
<h2>Target price reached: {{.Origin}} → {{.Dest}}</h2>
<p>The price for your flight on <b>{{.Date}}</b> is at or below your target.</p>
<table>
<tr><td>Target price</td><td>{{.Target}}</td></tr>
<tr><td>Current price</td><td><b>{{.Current}}</b></td></tr>
<tr><td>Below target</td><td>{{.Magnitude}}</td></tr>
</table>
<p><small>Observed at {{.ObservedAt}}.</small></p>
</body></html>{{end}}`

var textTemplates = texttemplate.Must(texttemplate.New("alert").Parse(textDrop + textTarget))
var htmlTemplates = htmltemplate.Must(htmltemplate.New("alert").Parse(htmlDrop + htmlTarget))
