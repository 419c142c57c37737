/*
Package notify reports answers on the console and delivers them as email digests.
*/
package notify

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const dateLayout = "02/01/2006 15:04"

// Digest is one answered question.
type Digest struct {
	Question string
	Answer   string
	Label    string
	Symbols  []string
	Sources  []string
	Success  bool
	AskedAt  time.Time
}

// Subject is the email subject line for the digest.
func (d Digest) Subject() string {
	if len(d.Symbols) == 0 {
		return fmt.Sprintf("Stockchat: %s", truncate(d.Question, 60))
	}
	return fmt.Sprintf("Stockchat %s: %s", strings.Join(d.Symbols, ", "), truncate(d.Question, 60))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}

// ReportAnswer writes the digest for a terminal reader.
func ReportAnswer(w io.Writer, d Digest) {
	fmt.Fprintln(w, "\n===========================================")
	if d.Success {
		fmt.Fprintf(w, "✅ %s\n", d.Question)
	} else {
		fmt.Fprintf(w, "⚠️  %s\n", d.Question)
	}
	fmt.Fprintln(w, "===========================================")

	fmt.Fprintf(w, "Label:   %s\n", d.Label)
	fmt.Fprintf(w, "Symbols: %s\n", orNone(d.Symbols))
	fmt.Fprintf(w, "Sources: %s\n", orNone(d.Sources))
	if !d.AskedAt.IsZero() {
		fmt.Fprintf(w, "Asked:   %s\n", d.AskedAt.Format(dateLayout))
	}
	fmt.Fprintf(w, "\n%s\n", d.Answer)
	fmt.Fprintln(w, "-------------------------------------------")
}

// Notifier renders a digest and sends it.
type Notifier struct {
	renderer *HTMLEmailRenderer
	sender   *EmailSender
}

func NewNotifier(sender *EmailSender) *Notifier {
	return &Notifier{renderer: NewHTMLEmailRenderer(), sender: sender}
}

// EmailAnswer is a no-op when the sender is disabled.
func (n *Notifier) EmailAnswer(d Digest) error {
	if !n.sender.Enabled() {
		return nil
	}
	msg, err := n.renderer.Render(d)
	if err != nil {
		return err
	}
	return n.sender.Send(msg)
}
