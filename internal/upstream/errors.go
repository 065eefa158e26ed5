package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Kind is the user-facing failure category of an upstream call.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindTimeout    Kind = "timeout"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindServer     Kind = "server"
	KindDecode     Kind = "decode"
)

type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage maps the failure category to the banner text shown on pages.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "Tidak dapat terhubung ke server. Periksa koneksi Anda."
	case KindTimeout:
		return "Permintaan melebihi batas waktu. Silakan coba lagi."
	case KindAuth:
		return "Sesi Anda telah berakhir. Silakan login kembali."
	case KindForbidden:
		return "Anda tidak memiliki akses untuk tindakan ini."
	case KindNotFound:
		return "Data tidak ditemukan."
	case KindValidation:
		return "Data yang dikirim tidak valid."
	case KindDecode:
		return "Server mengirim data yang tidak dikenali."
	}
	return "Terjadi kesalahan pada server. Silakan coba beberapa saat lagi."
}

// FromStatus classifies a non-2xx HTTP response. msg carries the upstream
// message when one could be extracted from the body.
func FromStatus(status int, msg string) *Error {
	e := &Error{StatusCode: status, Message: msg}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 400 && status < 500:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}

// classifyTransport distinguishes "no response received" failures: timeouts
// vs everything else on the wire (DNS, refused, reset).
func classifyTransport(err error) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "no response from server", Err: err}
}
