package form

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	http "github.com/bogdanfinn/fhttp"
)

// Webflow submit event the target site expects on every page.
const (
	SubmitField = "_eventId_submit"
	SubmitValue = "Continue"
)

// Form is the first <form> of a page with its seeded field values.
type Form struct {
	Action string
	Method string
	Fields *Values

	doc  *goquery.Document
	node *goquery.Selection
}

// Extract parses html and returns its first form, or nil when the page has none.
func Extract(html string) (*Form, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("form: parse html: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument returns the first form of an already parsed document.
func FromDocument(doc *goquery.Document) *Form {
	node := doc.Find("form").First()
	if node.Length() == 0 {
		return nil
	}

	action, _ := node.Attr("action")
	method := http.MethodPost
	if m, ok := node.Attr("method"); ok && strings.TrimSpace(m) != "" {
		method = strings.ToUpper(strings.TrimSpace(m))
	}

	f := &Form{
		Action: action,
		Method: method,
		Fields: NewValues(),
		doc:    doc,
		node:   node,
	}
	node.Find("input, select, textarea, button").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		if value, include := seedValue(s, name); include {
			f.Fields.Set(name, value)
		}
	})
	return f
}

func seedValue(s *goquery.Selection, name string) (string, bool) {
	tag := goquery.NodeName(s)
	typ := strings.ToLower(s.AttrOr("type", ""))

	switch {
	case typ == "checkbox" || typ == "radio":
		if _, checked := s.Attr("checked"); !checked {
			return "", false
		}
		return s.AttrOr("value", "on"), true
	case tag == "button" || typ == "submit":
		if !strings.Contains(name, "eventId") && name != SubmitField {
			return "", false
		}
		return s.AttrOr("value", SubmitValue), true
	case tag == "select":
		return selectValue(s), true
	case tag == "textarea":
		return s.Text(), true
	default:
		return s.AttrOr("value", ""), true
	}
}

func selectValue(s *goquery.Selection) string {
	options := s.Find("option")
	if options.Length() == 0 {
		return ""
	}
	chosen := options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		_, ok := o.Attr("selected")
		return ok
	}).First()
	if chosen.Length() == 0 {
		chosen = options.First()
	}
	if v, ok := chosen.Attr("value"); ok {
		return v
	}
	return chosen.Text()
}

// Controls returns the form's descendants matching selector.
func (f *Form) Controls(selector string) *goquery.Selection {
	return f.node.Find(selector)
}

// LabelFor returns the lower-cased text of the document's label[for=id].
func (f *Form) LabelFor(id string) string {
	if id == "" {
		return ""
	}
	return strings.ToLower(f.doc.Find("label").FilterFunction(func(_ int, l *goquery.Selection) bool {
		return l.AttrOr("for", "") == id
	}).Text())
}

// Payload returns the seeded fields with the submit event ensured, then
// overrides applied on top.
func (f *Form) Payload(overrides *Values) *Values {
	out := f.Fields.Clone()
	if !out.Has(SubmitField) {
		out.Set(SubmitField, SubmitValue)
	}
	out.Merge(overrides)
	return out
}
