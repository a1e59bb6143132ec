// Package docgen renders outbound legal documents (umbrella agreements, task
// orders) from procedure data. Callers treat the output as opaque bytes;
// binary rendering formats live behind whatever stores or serves the result.
package docgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hirepay/internal/procedure"
)

var templates = template.Must(template.New("docs").Parse(`
{{define "UMBRELLA_AGREEMENT"}}UMBRELLA AGREEMENT

This agreement is between Just Results and {{.ConsultantName}} ({{.ConsultantEmail}}).

Procedure: {{.ProcedureUUID}}
Generated: {{.GeneratedAt}}

Please review and sign this agreement.
{{end}}

{{define "TASK_ORDER"}}TASK ORDER

Procedure: {{.ProcedureUUID}}
Consultant: {{.ConsultantName}} ({{.ConsultantEmail}})
Role: {{.RoleTitle}}
Start date: {{.StartDate}}
Rate: {{.Rate}}

Scope: consulting services as outlined in the umbrella agreement.
Generated: {{.GeneratedAt}}
{{end}}

{{define "GENERIC"}}{{.DocTitle}}

Procedure: {{.ProcedureUUID}}
Consultant: {{.ConsultantName}} ({{.ConsultantEmail}})
Generated: {{.GeneratedAt}}
{{end}}
`))

var titleCaser = cases.Title(language.AmericanEnglish)

// Generator renders document content for a procedure and document type.
type Generator struct {
	now func() time.Time
}

// New constructs a Generator.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock constructs a Generator with a fixed clock, for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Now returns the generator's clock reading, so callers stamping related
// records share the same time source.
func (g *Generator) Now() time.Time {
	return g.now()
}

type templateData struct {
	ProcedureUUID   string
	ConsultantName  string
	ConsultantEmail string
	DocTitle        string
	RoleTitle       string
	StartDate       string
	Rate            string
	GeneratedAt     string
}

// Generate produces the bytes for one document slot of a procedure.
func (g *Generator) Generate(proc *procedure.Procedure, docType procedure.DocType) ([]byte, error) {
	if proc == nil {
		return nil, fmt.Errorf("procedure required")
	}

	now := g.now().UTC()
	data := templateData{
		ProcedureUUID:   proc.UUID,
		ConsultantName:  DisplayName(proc.ConsultantName),
		ConsultantEmail: proc.ConsultantEmail,
		DocTitle:        docTitle(docType),
		RoleTitle:       "Consultant",
		StartDate:       now.AddDate(0, 0, 7).Format("2006-01-02"),
		Rate:            "USD 100/hr",
		GeneratedAt:     now.Format(time.RFC3339),
	}

	name := "GENERIC"
	switch docType {
	case procedure.DocUmbrellaAgreement:
		name = "UMBRELLA_AGREEMENT"
	case procedure.DocTaskOrder:
		name = "TASK_ORDER"
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", docType, err)
	}
	return bytes.TrimLeft(buf.Bytes(), "\n"), nil
}

// SuggestedFileName returns the file name hint recorded with generated documents.
func SuggestedFileName(docType procedure.DocType) string {
	return strings.ToLower(string(docType)) + ".pdf"
}

// DisplayName normalizes a consultant name for rendering.
func DisplayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return trimmed
	}
	return titleCaser.String(trimmed)
}

func docTitle(docType procedure.DocType) string {
	return strings.ReplaceAll(string(docType), "_", " ")
}
