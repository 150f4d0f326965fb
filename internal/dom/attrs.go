package dom

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Data returns the value of data-<name>.
func Data(sel *goquery.Selection, name string) string {
	return sel.AttrOr("data-"+name, "")
}

// HasData reports whether data-<name> is present, even when empty.
func HasData(sel *goquery.Selection, name string) bool {
	_, ok := sel.Attr("data-" + name)
	return ok
}

// SetBool writes "true" or "false", as ARIA attributes expect.
func SetBool(sel *goquery.Selection, attr string, value bool) {
	sel.SetAttr(attr, strconv.FormatBool(value))
}

func ToggleClass(sel *goquery.Selection, class string, on bool) {
	if on {
		sel.AddClass(class)
		return
	}
	sel.RemoveClass(class)
}

// SetHidden mirrors element.hidden.
func SetHidden(sel *goquery.Selection, hidden bool) {
	if hidden {
		sel.SetAttr("hidden", "")
		return
	}
	sel.RemoveAttr("hidden")
}

func IsHidden(sel *goquery.Selection) bool {
	_, ok := sel.Attr("hidden")
	return ok
}

// SetTabIndex implements the roving tabindex toggle.
func SetTabIndex(sel *goquery.Selection, focusable bool) {
	if focusable {
		sel.SetAttr("tabindex", "0")
		return
	}
	sel.SetAttr("tabindex", "-1")
}

// Value reads a form control value. Textareas keep theirs as text content.
func Value(sel *goquery.Selection) string {
	if goquery.NodeName(sel) == "textarea" {
		return sel.Text()
	}
	return sel.AttrOr("value", "")
}

// SetValue writes a form control value.
func SetValue(sel *goquery.Selection, value string) {
	if goquery.NodeName(sel) == "textarea" {
		sel.SetText(value)
		return
	}
	sel.SetAttr("value", value)
}

func Checked(sel *goquery.Selection) bool {
	_, ok := sel.Attr("checked")
	return ok
}

func SetChecked(sel *goquery.Selection, checked bool) {
	if checked {
		sel.SetAttr("checked", "")
		return
	}
	sel.RemoveAttr("checked")
}

// Element builds a detached element node.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text builds a detached text node.
func Text(value string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: value}
}

// Append adds children to parent and returns parent.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

// CollapseSpace trims and folds internal whitespace runs to single spaces.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
