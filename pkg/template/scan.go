package template

import (
	"strings"
	"unicode"
)

type tagKind int

const (
	tagExpr tagKind = iota
	tagComment
)

type rawTag struct {
	kind      tagKind
	content   string
	offset    int
	trimLeft  bool
	trimRight bool
}

// piece is either literal text or a tag.
type piece struct {
	text string
	tag  *rawTag
}

// scan splits src into literal text and {{…}} tags. A backslash before {{
// emits the braces literally.
func scan(src string) ([]piece, error) {
	var pieces []piece
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			pieces = append(pieces, piece{text: text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(src) {
		rel := strings.Index(src[i:], "{{")
		if rel < 0 {
			text.WriteString(src[i:])
			break
		}
		start := i + rel

		if start > 0 && src[start-1] == '\\' {
			text.WriteString(src[i : start-1])
			text.WriteString("{{")
			i = start + 2
			continue
		}
		text.WriteString(src[i:start])
		flush()

		tag, next, err := scanTag(src, start)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece{tag: tag})
		i = next
	}
	flush()

	applyTrim(pieces)
	return pieces, nil
}

func scanTag(src string, start int) (*rawTag, int, error) {
	pos := start + 2
	closer := "}}"
	if strings.HasPrefix(src[pos:], "{") {
		closer = "}}}"
		pos++
	}

	tag := &rawTag{offset: start}
	if strings.HasPrefix(src[pos:], "~") {
		tag.trimLeft = true
		pos++
	}

	if strings.HasPrefix(src[pos:], "!--") {
		end := strings.Index(src[pos:], "--"+closer)
		if end < 0 {
			return nil, 0, syntaxErr(start, "unclosed comment")
		}
		tag.kind = tagComment
		return tag, pos + end + 2 + len(closer), nil
	}

	end := strings.Index(src[pos:], closer)
	if end < 0 {
		return nil, 0, syntaxErr(start, "unclosed tag %q", excerpt(src[start:]))
	}
	content := src[pos : pos+end]
	next := pos + end + len(closer)

	if strings.HasSuffix(content, "~") {
		tag.trimRight = true
		content = content[:len(content)-1]
	}
	if strings.HasPrefix(content, "!") {
		tag.kind = tagComment
		return tag, next, nil
	}
	if strings.Contains(content, "{{") {
		return nil, 0, syntaxErr(start, "unclosed tag %q", excerpt(src[start:]))
	}

	tag.content = strings.TrimSpace(content)
	return tag, next, nil
}

// applyTrim implements the ~ whitespace control markers.
func applyTrim(pieces []piece) {
	for i, p := range pieces {
		if p.tag == nil {
			continue
		}
		if p.tag.trimLeft && i > 0 && pieces[i-1].tag == nil {
			pieces[i-1].text = strings.TrimRightFunc(pieces[i-1].text, unicode.IsSpace)
		}
		if p.tag.trimRight && i+1 < len(pieces) && pieces[i+1].tag == nil {
			pieces[i+1].text = strings.TrimLeftFunc(pieces[i+1].text, unicode.IsSpace)
		}
	}
}

func excerpt(s string) string {
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
