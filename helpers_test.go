package chachan

import (
	"io"
	"log/slog"
	"testing"

	"github.com/DataShades/chachan/transport"
)

func newTestChat(t *testing.T, opts *Options) (*Chat, *transport.Namespace) {
	t.Helper()

	if opts == nil {
		opts = &Options{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ns := transport.NewNamespace("/chat")
	return NewChat(ns, opts), ns
}

func connect(t *testing.T, ns *transport.Namespace, id string) *transport.LocalSession {
	t.Helper()

	sess := transport.NewLocalSession(id)
	ns.Connect(sess)
	return sess
}

func login(t *testing.T, sess *transport.LocalSession, user string) {
	t.Helper()

	sess.Emit(EventUserLogin, map[string]any{"user": user}, nil)
}
