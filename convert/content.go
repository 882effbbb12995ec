package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"msc/manuscript"
	"msc/state"
	"msc/text"
)

// Content encapsulates parsed manuscript along with everything needed to track
// it through the typesetting pipeline.
type Content struct {
	srcName string
	refID   string
	format  srcFormat

	// raw XML document, nil for markdown input
	doc *etree.Document

	ms *manuscript.Manuscript
}

// Accessor methods to expose Content fields to avoid cyclic imports in
// generator packages

func (c *Content) Manuscript() *manuscript.Manuscript { return c.ms }

func (c *Content) RefID() string { return c.refID }

func (c *Content) SrcName() string { return c.srcName }

// prepareContent reads and parses manuscript content for typesetting.
func prepareContent(ctx context.Context, r io.Reader, srcName string, format srcFormat, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	// Every processed source gets its own reference ID so multiple results
	// could be told apart in logs and debug reports.
	refID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate reference ID: %w", err)
	}

	tok := text.NewTokenizer(text.NewSplitter(log))

	content := &Content{
		srcName: srcName,
		refID:   refID.String(),
		format:  format,
	}

	switch format {
	case formatManuscript:
		doc := etree.NewDocument()
		doc.WriteSettings = etree.WriteSettings{
			CanonicalText:    true,
			CanonicalAttrVal: true,
		}
		doc.ReadSettings = etree.ReadSettings{
			CharsetReader: charset.NewReaderLabel,
			ValidateInput: false,
			Permissive:    true,
		}
		if _, err := doc.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("unable to read manuscript XML: %w", err)
		}
		content.doc = doc

		if content.ms, err = manuscript.ParseManuscript(doc, tok, log); err != nil {
			return nil, fmt.Errorf("unable to parse manuscript: %w", err)
		}
	case formatMarkdown:
		source, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("unable to read markdown: %w", err)
		}
		if content.ms, err = manuscript.ParseMarkdown(source, tok, log); err != nil {
			return nil, fmt.Errorf("unable to parse markdown: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported source format (%s)", format)
	}

	// Save parsed tree for debugging
	if env.Rpt != nil {
		name := fmt.Sprintf("parsed-%s-%s", content.refID, filepath.Base(srcName))
		env.Rpt.StoreData(name, []byte(content.String()))
	}

	return content, nil
}
