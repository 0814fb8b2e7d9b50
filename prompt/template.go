package prompt

import (
	"strings"

	"github.com/Paranoid-AF/codelet"
)

// TemplateData holds the data passed to a custom prompt template.
type TemplateData struct {
	// Request is the user's instruction or the default request.
	Request string
	// Code is the rendered code section with the cursor marker.
	Code string
	// Context joins the optional sections that survived truncation, except
	// the project section.
	Context string
	// Project is the rendered project section, or "".
	Project  string
	Language string
	FileName string
	// Format is the mode-specific output instruction.
	Format string
}

func templateData(secs []section, rec *codelet.ContextRecord) TemplateData {
	data := TemplateData{Language: rec.LanguageID, FileName: rec.FileName}
	var context []string
	for _, s := range secs {
		switch s.id {
		case secSystem, secNotice:
		case secCode:
			data.Code = s.render()
		case secRequest:
			data.Request = s.body
		case secFormat:
			data.Format = s.body
		case secProject:
			data.Project = s.render()
		default:
			context = append(context, s.render())
		}
	}
	data.Context = strings.Join(context, "\n\n")
	return data
}

func (b *Builder) execute(secs []section, rec *codelet.ContextRecord) (string, error) {
	var buf strings.Builder
	if err := b.tmpl.Execute(&buf, templateData(secs, rec)); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), " \t\n"), nil
}

// templateLayout renders the system section, then the custom template, then
// any notices.
func (b *Builder) templateLayout(secs []section, rec *codelet.ContextRecord) string {
	body, err := b.execute(secs, rec)
	if err != nil {
		return defaultLayout(secs)
	}
	var parts []string
	for _, s := range secs {
		if s.id == secSystem {
			parts = append(parts, s.render())
		}
	}
	parts = append(parts, body)
	for _, s := range secs {
		if s.id == secNotice {
			parts = append(parts, s.render())
		}
	}
	return strings.Join(parts, "\n\n")
}
