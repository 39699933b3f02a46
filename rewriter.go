package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ElementHandler is called once for every start tag matching its selector.
type ElementHandler func(el *Element)

type binding struct {
	selector string
	match    cascadia.Matcher
	handle   ElementHandler
}

// Rewriter applies element handlers to an HTML document in a single
// forward pass over its tokens, without building a tree.
//
// Selectors are matched against the start tag alone: tag name, id, class
// and attribute selectors work, combinators and structural pseudo-classes
// never match. A Rewriter must not be changed once Transform is in use;
// Transform itself is safe for concurrent use.
type Rewriter struct {
	bindings []binding
}

func NewRewriter() *Rewriter {
	return &Rewriter{}
}

// On registers h for elements matching selector. Handlers run in
// registration order.
func (rw *Rewriter) On(selector string, h ElementHandler) error {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return fmt.Errorf("bad selector %q: %w", selector, err)
	}

	rw.bindings = append(rw.bindings, binding{
		selector: selector,
		match:    sel,
		handle:   h,
	})

	return nil
}

// Element is the start tag a handler is invoked with. Content added with
// Prepend, Append and SetInnerContent is ignored for elements that have no
// end tag: void elements, and self-closing tags inside svg or math.
type Element struct {
	node        *html.Node
	selfClosing bool
	modified    bool

	prepend strings.Builder
	append  strings.Builder
	inner   *string
}

func (el *Element) TagName() string {
	return el.node.Data
}

func (el *Element) GetAttribute(name string) (string, bool) {
	for _, a := range el.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (el *Element) HasAttribute(name string) bool {
	_, ok := el.GetAttribute(name)
	return ok
}

func (el *Element) SetAttribute(name, value string) {
	el.modified = true
	for i, a := range el.node.Attr {
		if a.Key == name {
			el.node.Attr[i].Val = value
			return
		}
	}
	el.node.Attr = append(el.node.Attr, html.Attribute{Key: name, Val: value})
}

func (el *Element) RemoveAttribute(name string) {
	attrs := el.node.Attr[:0]
	for _, a := range el.node.Attr {
		if a.Key == name {
			el.modified = true
			continue
		}
		attrs = append(attrs, a)
	}
	el.node.Attr = attrs
}

// Prepend inserts raw HTML right after the start tag.
func (el *Element) Prepend(content string) {
	el.prepend.WriteString(content)
}

// Append inserts raw HTML right before the end tag.
func (el *Element) Append(content string) {
	el.append.WriteString(content)
}

// SetInnerContent replaces the element's children with escaped text.
// Content prepended or appended earlier is discarded along with them.
func (el *Element) SetInnerContent(text string) {
	s := html.EscapeString(text)
	el.inner = &s
	el.prepend.Reset()
	el.append.Reset()
}

func (el *Element) isVoid() bool {
	return voidElements[el.node.DataAtom]
}

func (el *Element) writeStartTag(w io.Writer) {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(el.node.Data)
	for _, a := range el.node.Attr {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if el.selfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	io.WriteString(w, b.String())
}

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Keygen: true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

func isForeignRoot(tag string) bool {
	return tag == "svg" || tag == "math"
}

// frame is an open element that still owes output at its end tag.
// depth counts nested open elements with the same tag name.
type frame struct {
	tag    string
	depth  int
	append string
	skip   bool
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// Transform streams src to dst, applying the registered handlers.
// Everything no handler changed is copied byte for byte.
func (rw *Rewriter) Transform(dst io.Writer, src io.Reader) error {
	var (
		w        = &errWriter{w: dst}
		z        = html.NewTokenizer(src)
		stack    []*frame
		skipping bool
		// open svg and math elements; a self-closing tag only closes itself in there
		foreign int
	)

	for w.err == nil {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("error reading document: %w", err)
			}

			// Unclosed elements still get their appended content.
			for i := len(stack) - 1; i >= 0; i-- {
				io.WriteString(w, stack[i].append)
			}
			return w.err

		case html.StartTagToken, html.SelfClosingTagToken:
			// TagName lowercases the buffer in place, so keep the raw bytes first.
			raw := append([]byte(nil), z.Raw()...)
			el := readElement(z, tt == html.SelfClosingTagToken)
			tag := el.TagName()
			void := el.isVoid() || (el.selfClosing && (foreign > 0 || isForeignRoot(tag)))

			if !void && isForeignRoot(tag) {
				foreign++
			}

			if !void {
				for _, f := range stack {
					if f.tag == tag {
						f.depth++
					}
				}
			}

			if skipping {
				continue
			}

			for _, b := range rw.bindings {
				if b.match.Match(el.node) {
					b.handle(el)
				}
			}

			if el.modified {
				el.writeStartTag(w)
			} else {
				w.Write(raw)
			}

			if void {
				continue
			}

			io.WriteString(w, el.prepend.String())

			switch {
			case el.inner != nil:
				io.WriteString(w, *el.inner)
				stack = append(stack, &frame{tag: tag, append: el.append.String(), skip: true})
				skipping = true
			case el.append.Len() > 0:
				stack = append(stack, &frame{tag: tag, append: el.append.String()})
			}

		case html.EndTagToken:
			raw := append([]byte(nil), z.Raw()...)
			name, _ := z.TagName()
			tag := string(name)

			if isForeignRoot(tag) && foreign > 0 {
				foreign--
			}

			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].tag == tag {
					idx = i
					break
				}
			}

			if idx >= 0 && stack[idx].depth == 0 {
				// Anything opened after stack[idx] is implicitly closed with it.
				for i := len(stack) - 1; i >= idx; i-- {
					if stack[i].skip {
						skipping = false
					}
					io.WriteString(w, stack[i].append)
				}
				stack = stack[:idx]
			}

			for _, f := range stack {
				if f.tag == tag && f.depth > 0 {
					f.depth--
				}
			}

			if !skipping {
				w.Write(raw)
			}

		default:
			if !skipping {
				w.Write(z.Raw())
			}
		}
	}

	return w.err
}

func readElement(z *html.Tokenizer, selfClosing bool) *Element {
	name, hasAttr := z.TagName()
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     string(name),
		DataAtom: atom.Lookup(name),
	}

	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		n.Attr = append(n.Attr, html.Attribute{Key: string(key), Val: string(val)})
	}

	return &Element{node: n, selfClosing: selfClosing}
}
