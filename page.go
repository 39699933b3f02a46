package main

import (
	"strings"
)

// Elements of the upstream template that get rewritten.
const (
	selLinks   = "div#links"
	selProfile = "div#profile"
	selAvatar  = "img#avatar"
	selName    = "h1#name"
	selSocial  = "div#social"
	selTitle   = "title"
	selBody    = "body"
)

type pageBinding struct {
	selector string
	handle   ElementHandler
}

// newPageRewriter builds the rewriter that turns the upstream template into
// the page for p. Link and social values are inlined without escaping.
func newPageRewriter(p Page) (*Rewriter, error) {
	var (
		rw    = NewRewriter()
		links = renderLinks(p.Links)
	)

	bindings := []pageBinding{
		{selLinks, func(el *Element) { el.Append(links) }},
		{selProfile, func(el *Element) { el.RemoveAttribute("style") }},
		{selAvatar, func(el *Element) { el.SetAttribute("src", p.Profile.AvatarURL) }},
		{selName, func(el *Element) { el.SetInnerContent(p.Profile.Name) }},
	}

	if len(p.Social) > 0 {
		social := renderSocial(p.Social)
		bindings = append(bindings, pageBinding{selSocial, func(el *Element) {
			el.RemoveAttribute("style")
			el.Append(social)
		}})
	}

	if p.Profile.Title != "" {
		bindings = append(bindings, pageBinding{selTitle, func(el *Element) { el.SetInnerContent(p.Profile.Title) }})
	}

	if p.Profile.BackgroundClass != "" {
		bindings = append(bindings, pageBinding{selBody, func(el *Element) { el.SetAttribute("class", p.Profile.BackgroundClass) }})
	}

	for _, b := range bindings {
		if err := rw.On(b.selector, b.handle); err != nil {
			return nil, err
		}
	}

	return rw, nil
}

func renderLinks(links []Link) string {
	var b strings.Builder
	for _, l := range links {
		b.WriteString(`<a href="` + l.URL + `">` + l.Name + `</a>`)
	}
	return b.String()
}

func renderSocial(social []Social) string {
	var b strings.Builder
	for _, s := range social {
		b.WriteString(`<a href="` + s.URL + `"><img src="` + s.Icon + `"></a>`)
	}
	return b.String()
}
