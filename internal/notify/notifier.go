package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind classifies a notice for presentation.
type Kind string

const (
	// KindError is an error banner.
	KindError Kind = "error"

	// KindDownload is the manual-download fallback notice.
	KindDownload Kind = "download"

	// KindInfo is a neutral informational notice.
	KindInfo Kind = "info"
)

// Notice is one transient message shown to the user.
type Notice struct {
	// Kind classifies the notice.
	Kind Kind

	// Message is the notice text.
	Message string

	// Link is the URL offered for manual downloads. Empty otherwise.
	Link string

	// Filename is the suggested save name for manual downloads.
	Filename string
}

// Notifier owns the single notice slot.
//
// Design decision: There is exactly one slot, not a queue. The dashboard
// this replaces stacked overlay nodes when show/remove pairs raced; a single
// superseding slot cannot leak and matches what the user can actually read.
type Notifier struct {
	// out receives the rendered notices.
	out io.Writer

	// ttl is the auto-dismiss timeout.
	ttl time.Duration

	// mu guards the active notice and its timer.
	mu     sync.Mutex
	active *Notice
	timer  *time.Timer
	seq    uint64
}

// NewNotifier creates a Notifier writing rendered notices to out.
// Notices auto-dismiss after ttl; ttl <= 0 disables auto-dismiss.
func NewNotifier(out io.Writer, ttl time.Duration) *Notifier {
	return &Notifier{
		out: out,
		ttl: ttl,
	}
}

// Show makes the notice active, superseding any currently active one, and
// renders it. The notice is released on TTL expiry, Dismiss, or the next
// Show, whichever comes first.
func (n *Notifier) Show(notice Notice) {
	n.mu.Lock()

	// Supersede: stop the old timer before replacing the notice.
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}

	n.active = &notice
	n.seq++
	seq := n.seq

	if n.ttl > 0 {
		n.timer = time.AfterFunc(n.ttl, func() {
			n.dismissSeq(seq)
		})
	}

	n.mu.Unlock()

	fmt.Fprint(n.out, render(notice))
}

// Dismiss releases the active notice, if any.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.active = nil
}

// Active returns the active notice, or false when the slot is free.
func (n *Notifier) Active() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.active == nil {
		return Notice{}, false
	}
	return *n.active, true
}

// dismissSeq releases the notice only if it has not been superseded since
// the timer was armed.
func (n *Notifier) dismissSeq(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.seq != seq {
		return
	}
	n.timer = nil
	n.active = nil
}

// render formats a notice for terminal display.
func render(notice Notice) string {
	switch notice.Kind {
	case KindDownload:
		return fmt.Sprintf("! %s\n  Download it manually: %s (save as %s)\n",
			notice.Message, notice.Link, notice.Filename)
	case KindError:
		return fmt.Sprintf("Error: %s\n", notice.Message)
	default:
		return notice.Message + "\n"
	}
}
