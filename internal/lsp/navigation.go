package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
)

// handleHover describes the SQL behind the call under the cursor.
func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	hover := s.hover(s.ctx, params.TextDocument.URI, params.Position)
	if hover == nil {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}
	s.sendResponse(msg.ID, hover, nil)
	return nil
}

// handleDefinition jumps from a keyed call to its .sql file.
func (s *Server) handleDefinition(msg *JSONRPCMessage) error {
	var params DefinitionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	loc := s.definition(s.ctx, params.TextDocument.URI, params.Position)
	if loc == nil {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}
	s.sendResponse(msg.ID, loc, nil)
	return nil
}

// siteAt returns the innermost binding call containing pos.
func (s *Server) siteAt(ctx context.Context, doc *Document, pos Position) (callsite.CallSite, bool) {
	_, eng := s.current()
	if eng == nil {
		return callsite.CallSite{}, false
	}
	sites, err := eng.Sites(ctx, URIToPath(doc.URI), []byte(doc.Content))
	if err != nil {
		return callsite.CallSite{}, false
	}

	offset := doc.PositionToOffset(pos)
	var best callsite.CallSite
	found := false
	for _, site := range sites {
		if !site.CallSpan.Contains(offset) {
			continue
		}
		if !found || site.CallSpan.Len() < best.CallSpan.Len() {
			best, found = site, true
		}
	}
	return best, found
}

func (s *Server) hover(ctx context.Context, uri string, pos Position) *Hover {
	doc := s.documents.Get(uri)
	if doc == nil {
		return nil
	}
	site, ok := s.siteAt(ctx, doc, pos)
	if !ok {
		return nil
	}
	_, eng := s.current()
	form, _ := eng.FormOf(site.Target)

	var b strings.Builder
	expected, err := eng.Resolve(ctx, site)
	switch {
	case err != nil:
		fmt.Fprintf(&b, "**%s** `%s`\n\n%v", site.Target, site.Literal, err)
	case form == core.FormKeyed:
		fmt.Fprintf(&b, "**%s** `%s`\n\n`%s`\n", site.Target, site.Literal, expected.Path)
		if content, err := os.ReadFile(expected.Path); err == nil {
			fmt.Fprintf(&b, "\n```sql\n%s\n```\n", strings.TrimRight(string(content), "\n"))
		}
		writeParams(&b, expected.Names)
	default:
		fmt.Fprintf(&b, "**%s** inline SQL\n", site.Target)
		writeParams(&b, expected.Names)
	}

	start := doc.OffsetToPosition(site.KeySpan.Start.Offset)
	end := doc.OffsetToPosition(site.KeySpan.End.Offset)
	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: b.String()},
		Range:    &Range{Start: start, End: end},
	}
}

func writeParams(b *strings.Builder, names []string) {
	if len(names) == 0 {
		b.WriteString("\nNo parameters.")
		return
	}
	b.WriteString("\nParameters: ")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "`%s`", name)
	}
}

func (s *Server) definition(ctx context.Context, uri string, pos Position) *Location {
	doc := s.documents.Get(uri)
	if doc == nil {
		return nil
	}
	site, ok := s.siteAt(ctx, doc, pos)
	if !ok {
		return nil
	}
	_, eng := s.current()
	if form, _ := eng.FormOf(site.Target); form != core.FormKeyed {
		return nil
	}
	expected, err := eng.Resolve(ctx, site)
	if err != nil || expected.Path == "" {
		return nil
	}
	return &Location{URI: PathToURI(expected.Path)}
}
