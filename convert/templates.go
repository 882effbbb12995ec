package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"msc/config"
	"msc/manuscript"
	"msc/text"
)

type AuthorDefinition struct {
	Prefix, GivenName, Surname, Suffix string
}

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Subtitle   string
	Authors    []AuthorDefinition
	WordCount  int
	SourceFile string
	RefID      string
}

// tokensText renders a token stream back into plain text.
func tokensText(tokens []text.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func buildAuthors(ms *manuscript.Manuscript) []AuthorDefinition {
	head := ms.Head()
	if head == nil {
		return nil
	}

	var result []AuthorDefinition
	for _, child := range head.Children {
		authors, ok := child.(*manuscript.Authors)
		if !ok {
			continue
		}
		for _, child := range authors.Children {
			person, ok := child.(*manuscript.Person)
			if !ok {
				continue
			}
			var def AuthorDefinition
			for _, part := range person.Children {
				switch e := part.(type) {
				case *manuscript.Prefix:
					def.Prefix = tokensText(e.Tokens)
				case *manuscript.GivenName:
					def.GivenName = tokensText(e.Tokens)
				case *manuscript.Surname:
					def.Surname = tokensText(e.Tokens)
				case *manuscript.Suffix:
					def.Suffix = tokensText(e.Tokens)
				}
			}
			result = append(result, def)
		}
	}
	return result
}

func buildTitle(ms *manuscript.Manuscript, subtitle bool) string {
	head := ms.Head()
	if head == nil {
		return ""
	}
	for _, child := range head.Children {
		if subtitle {
			if e, ok := child.(*manuscript.Subtitle); ok {
				return tokensText(e.Tokens)
			}
		} else {
			if e, ok := child.(*manuscript.Title); ok {
				return tokensText(e.Tokens)
			}
		}
	}
	return ""
}

func expandTemplate(c *Content, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      buildTitle(c.ms, false),
		Subtitle:   buildTitle(c.ms, true),
		Authors:    buildAuthors(c.ms),
		WordCount:  c.ms.WordCount,
		SourceFile: strings.TrimSuffix(filepath.Base(c.srcName), filepath.Ext(c.srcName)),
		RefID:      c.refID,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
