// Package contact turns the contact form into a mail client handoff.
package contact

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"portfolio/internal/browser"
	"portfolio/internal/dom"
	perrors "portfolio/internal/errors"
	"portfolio/internal/locale"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const formSelector = "form[data-contact-form]"

// Submission is the form content. Website is the honeypot field and must
// stay empty.
type Submission struct {
	FullName string `validate:"required,max=120"`
	Email    string `validate:"required,email,max=254"`
	Message  string `validate:"required,max=5000"`
	Website  string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields. A filled honeypot yields ErrHoneypot.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Website) != "" {
		return perrors.ErrHoneypot
	}
	if err := validate.Struct(s); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return fmt.Errorf("%w: %s failed %s", perrors.ErrInvalidContact, fields[0].Field(), fields[0].Tag())
		}
		return fmt.Errorf("%w: %v", perrors.ErrInvalidContact, err)
	}
	return nil
}

// BuildMailto percent-encodes subject and body; spaces become %20.
func BuildMailto(to, subject, body string) string {
	return "mailto:" + to + "?subject=" + encode(subject) + "&body=" + encode(body)
}

func encode(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// Form binds the markup form.
type Form struct {
	doc *dom.Document
	win *browser.Window
	tr  locale.Translator
	log zerolog.Logger
}

func New(doc *dom.Document, win *browser.Window, tr locale.Translator, log *zerolog.Logger) *Form {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "contact").Logger()
	}
	return &Form{doc: doc, win: win, tr: tr, log: l}
}

// Bind wires input and submit handling. It reports false when the page has
// no contact form.
func (f *Form) Bind() bool {
	form := f.doc.Find(formSelector).First()
	if form.Length() == 0 {
		return false
	}
	f.doc.On(form, "input", func(*dom.Event) { f.syncButton() })
	f.doc.On(form, "submit", f.onSubmit)
	f.syncButton()
	return true
}

// Read collects the current field values.
func (f *Form) Read() Submission {
	form := f.doc.Find(formSelector).First()
	field := func(name string) string {
		return strings.TrimSpace(dom.Value(form.Find(`[name="` + name + `"]`).First()))
	}
	return Submission{
		FullName: field("fullname"),
		Email:    field("email"),
		Message:  field("message"),
		Website:  field("website"),
	}
}

func (f *Form) syncButton() {
	sub := f.Read()
	sub.Website = ""
	btn := f.doc.Find(formSelector + " [data-form-btn]")
	if sub.Validate() == nil {
		btn.RemoveAttr("disabled")
		return
	}
	btn.SetAttr("disabled", "")
}

// Submit validates the form and hands the mail off to the window.
func (f *Form) Submit() (string, error) {
	form := f.doc.Find(formSelector).First()
	sub := f.Read()
	if err := sub.Validate(); err != nil {
		return "", err
	}
	lang := f.tr.Current()
	subject := locale.Format(f.tr.Resolve(lang, "contact.subject"), map[string]string{"name": sub.FullName})
	if subject == "" {
		subject = "Portfolio inquiry from " + sub.FullName
	}
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", sub.FullName, sub.Email, sub.Message)
	link := BuildMailto(dom.Data(form, "mailto"), subject, body)
	f.win.Navigate(link)
	return link, nil
}

func (f *Form) onSubmit(ev *dom.Event) {
	ev.PreventDefault()
	_, err := f.Submit()
	switch {
	case errors.Is(err, perrors.ErrHoneypot):
		f.log.Debug().Msg("honeypot filled, submission dropped")
		f.status("", "")
	case err != nil:
		f.status(f.text("contact.invalid", "Please check the form fields."), "is-error")
	default:
		f.status(f.text("contact.success", "Opening your mail client..."), "is-success")
	}
}

func (f *Form) text(key, fallback string) string {
	if v := f.tr.Resolve(f.tr.Current(), key); v != "" {
		return v
	}
	return fallback
}

func (f *Form) status(message, class string) {
	f.doc.Find(formSelector + " [data-form-status]").Each(func(_ int, s *goquery.Selection) {
		s.SetText(message)
		s.RemoveClass("is-error", "is-success")
		if class != "" {
			s.AddClass(class)
		}
	})
}
