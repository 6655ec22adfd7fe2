package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o deadline reached" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	notFound := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "ssl0.ovh.net", IsNotFound: true}}
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}

	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, ""},
		{"refused typed", fmt.Errorf("smtp dial x:25: %w", refused), CategoryRefused},
		{"refused text", errors.New("dial tcp 10.0.0.1:25: connect: connection refused"), CategoryRefused},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, CategoryTimeout},
		{"deadline", fmt.Errorf("read: %w", os.ErrDeadlineExceeded), CategoryTimeout},
		{"ctx deadline", context.DeadlineExceeded, CategoryTimeout},
		{"timeout text", errors.New("smtp: i/o timeout"), CategoryTimeout},
		{"tls record header", tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"}, CategorySocket},
		{"tls text", errors.New("tls: protocol version not supported"), CategorySocket},
		{"eof", fmt.Errorf("smtp dial: %w", io.EOF), CategorySocket},
		{"reset", fmt.Errorf("write: %w", syscall.ECONNRESET), CategorySocket},
		{"auth 535", &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}, CategoryAuth},
		{"auth text", errors.New("gomail: could not send email 1: 535 Authentication failed"), CategoryAuth},
		{"auth unsupported", errors.New("smtp: server doesn't support AUTH"), CategoryAuth},
		{"dns", errors.New("dial tcp: lookup smtp.invalid: no such host"), CategoryOther},
		{"dns on ssl host", fmt.Errorf("smtp dial ssl0.ovh.net:465: %w", notFound), CategoryOther},
		{"dns on port 2535", fmt.Errorf("smtp dial mail.example.com:2535: %w", notFound), CategoryOther},
		{"unknown reply on port 2535", fmt.Errorf("smtp dial mail.example.com:2535: %w", errors.New("unexpected reply")), CategoryOther},
		{"tls on ssl host", fmt.Errorf("smtp dial ssl0.ovh.net:465: %w", errors.New("remote error: tls handshake failure")), CategorySocket},
		{"auth reply code", errors.New("535-5.7.8 Username and Password not accepted"), CategoryAuth},
		{"rejected", &textproto.Error{Code: 550, Msg: "5.1.1 user unknown"}, CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestCategory_Temporary(t *testing.T) {
	require.True(t, CategoryRefused.Temporary())
	require.True(t, CategoryTimeout.Temporary())
	require.False(t, CategoryAuth.Temporary())
	require.False(t, CategorySocket.Temporary())
	require.False(t, CategoryOther.Temporary())
}
