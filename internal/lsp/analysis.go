package lsp

import (
	"context"
	"errors"
	"strings"

	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
)

// lineRange is an inclusive range of zero-based lines.
type lineRange struct {
	first, last int
}

func (r lineRange) overlaps(o lineRange) bool {
	return r.first <= o.last && o.first <= r.last
}

// check starts an analysis pass for an open document. The pass runs in
// the background against the current snapshot and publishes only if no
// newer pass for the document has started in the meantime.
func (s *Server) check(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}
	_, eng := s.current()
	if eng == nil {
		return
	}

	pass := s.passes.Begin(s.ctx, uri)
	go func() {
		defer pass.Done()

		report, err := eng.AnalyzeReport(pass.Context(), URIToPath(uri), []byte(doc.Content))
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Warn("analysis failed", "uri", uri, "error", err)
			}
			return
		}

		lines := callLines(report.Sites)
		pass.Commit(func() {
			s.replaceDiagnostics(doc, report.Diagnostics)
			s.mu.Lock()
			s.callLines[uri] = lines
			s.mu.Unlock()
			version := doc.Version
			s.publishDiagnostics(uri, &version)
		})
	}()
}

// checkAll re-checks every open document.
func (s *Server) checkAll() {
	for _, uri := range s.documents.List() {
		s.check(uri)
	}
}

// touchesCall reports whether an edit from prev to cur can change any
// diagnostic. That is the case when a changed line mentions a binding
// call in either version, or when the changed lines overlap a call found
// by the last pass.
func (s *Server) touchesCall(prev, cur *Document) bool {
	if prev == nil {
		return true
	}
	oldLines, newLines, ok := changedLines(prev, cur)
	if !ok {
		return false
	}

	_, eng := s.current()
	if eng == nil {
		return false
	}
	targets := eng.Targets()
	for line := oldLines.first; line <= oldLines.last; line++ {
		if mentionsCall(prev.GetLine(line), targets) {
			return true
		}
	}
	for line := newLines.first; line <= newLines.last; line++ {
		if mentionsCall(cur.GetLine(line), targets) {
			return true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.callLines[cur.URI] {
		if r.overlaps(oldLines) {
			return true
		}
	}
	return false
}

// changedLines compares two snapshots line by line and returns the
// differing block in each of them. ok is false if they are identical.
func changedLines(prev, cur *Document) (oldLines, newLines lineRange, ok bool) {
	if prev.Content == cur.Content {
		return lineRange{}, lineRange{}, false
	}
	a, b := prev.LineCount(), cur.LineCount()

	head := 0
	for head < a && head < b && prev.GetLine(head) == cur.GetLine(head) {
		head++
	}
	tail := 0
	for tail < a-head && tail < b-head && prev.GetLine(a-1-tail) == cur.GetLine(b-1-tail) {
		tail++
	}

	oldLines = lineRange{first: head, last: max(head, a-1-tail)}
	newLines = lineRange{first: head, last: max(head, b-1-tail)}
	return oldLines, newLines, true
}

// mentionsCall reports whether line contains `.name(` or `.name<` for
// one of the call names.
func mentionsCall(line string, targets []string) bool {
	for _, name := range targets {
		needle := "." + name
		rest := line
		for {
			i := strings.Index(rest, needle)
			if i < 0 {
				break
			}
			after := strings.TrimLeft(rest[i+len(needle):], " \t")
			if strings.HasPrefix(after, "(") || strings.HasPrefix(after, "<") {
				return true
			}
			rest = rest[i+len(needle):]
		}
	}
	return false
}

// callLines returns the lines spanned by each located call.
func callLines(sites []callsite.CallSite) []lineRange {
	out := make([]lineRange, 0, len(sites))
	for _, site := range sites {
		out = append(out, lineRange{
			first: site.CallSpan.Start.Line - 1,
			last:  site.CallSpan.End.Line - 1,
		})
	}
	return out
}
